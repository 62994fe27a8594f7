// Package protocol implements the three wire-level stages of the clone
// pipeline that sit between the HTTP transport and the packfile decoder:
// ref discovery, fetch-request construction, and side-band
// demultiplexing.
package protocol

import "errors"

// ErrTransport covers a non-200 status or a connection failure while
// talking to the remote.
var ErrTransport = errors.New("protocol: transport error")

// ErrProtocol covers malformed pkt-line framing, a missing PACK signature
// in the fetch response, or any other wire-contract violation. It may
// carry aggregated band-3 error messages from the remote.
var ErrProtocol = errors.New("protocol: protocol error")
