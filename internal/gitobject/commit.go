package gitobject

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sdawka/ggit/internal/githash"
)

// Identity is a Git author/committer identity: "name <email> timestamp tz".
type Identity struct {
	Name      string
	Email     string
	Timestamp int64
	Timezone  string
}

// ParseIdentity parses a "name <email> timestamp timezone" line.
func ParseIdentity(identity string) (Identity, error) {
	emailEnd := strings.LastIndex(identity, ">")
	if emailEnd == -1 {
		return Identity{}, fmt.Errorf("gitobject: invalid identity %q", identity)
	}
	emailStart := strings.LastIndex(identity[:emailEnd], "<")
	if emailStart == -1 {
		return Identity{}, fmt.Errorf("gitobject: invalid identity %q", identity)
	}

	name := strings.TrimSpace(identity[:emailStart])
	email := identity[emailStart+1 : emailEnd]

	timeStr := strings.TrimSpace(identity[emailEnd+1:])
	parts := strings.Split(timeStr, " ")
	if len(parts) != 2 {
		return Identity{}, fmt.Errorf("gitobject: invalid identity time %q", timeStr)
	}

	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("gitobject: invalid identity timestamp: %w", err)
	}

	return Identity{Name: name, Email: email, Timestamp: ts, Timezone: parts[1]}, nil
}

// String renders the identity back to its wire form.
func (i Identity) String() string {
	return fmt.Sprintf("%s <%s> %d %s", i.Name, i.Email, i.Timestamp, i.Timezone)
}

// Time returns the identity's timestamp interpreted in its recorded zone.
func (i Identity) Time() (time.Time, error) {
	if len(i.Timezone) != 5 {
		return time.Time{}, fmt.Errorf("gitobject: invalid timezone %q", i.Timezone)
	}
	sign := i.Timezone[0]
	if sign != '+' && sign != '-' {
		return time.Time{}, fmt.Errorf("gitobject: invalid timezone sign %q", i.Timezone)
	}
	hours, err := strconv.Atoi(i.Timezone[1:3])
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := strconv.Atoi(i.Timezone[3:5])
	if err != nil {
		return time.Time{}, err
	}
	seconds := hours*3600 + minutes*60
	if sign == '-' {
		seconds = -seconds
	}
	return time.Unix(i.Timestamp, 0).In(time.FixedZone("", seconds)), nil
}

// Commit is the parsed form of a commit object's text payload.
type Commit struct {
	Tree      githash.ID
	Parents   []githash.ID
	Author    Identity
	Committer Identity
	Message   string
}

var treeLineRe = regexp.MustCompile(`^tree ([0-9a-f]{40})$`)

// ParseCommit parses a commit object's payload.
func ParseCommit(payload []byte) (*Commit, error) {
	c := &Commit{}
	scanner := bufio.NewScanner(bytes.NewReader(payload))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	sawTree := false
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		switch {
		case treeLineRe.MatchString(line):
			m := treeLineRe.FindStringSubmatch(line)
			id, err := githash.FromHex(m[1])
			if err != nil {
				return nil, fmt.Errorf("gitobject: invalid commit tree id: %w", err)
			}
			c.Tree = id
			sawTree = true
		case strings.HasPrefix(line, "parent "):
			id, err := githash.FromHex(strings.TrimPrefix(line, "parent "))
			if err != nil {
				return nil, fmt.Errorf("gitobject: invalid commit parent id: %w", err)
			}
			c.Parents = append(c.Parents, id)
		case strings.HasPrefix(line, "author "):
			id, err := ParseIdentity(strings.TrimPrefix(line, "author "))
			if err != nil {
				return nil, err
			}
			c.Author = id
		case strings.HasPrefix(line, "committer "):
			id, err := ParseIdentity(strings.TrimPrefix(line, "committer "))
			if err != nil {
				return nil, err
			}
			c.Committer = id
		}
	}
	if !sawTree {
		return nil, fmt.Errorf("gitobject: commit missing tree line")
	}

	rest := new(bytes.Buffer)
	for scanner.Scan() {
		rest.WriteString(scanner.Text())
		rest.WriteByte('\n')
	}
	c.Message = rest.String()
	return c, scanner.Err()
}

// Marshal renders the commit back to its canonical text payload.
func (c *Commit) Marshal() []byte {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "tree %s\n", c.Tree.String())
	for _, p := range c.Parents {
		fmt.Fprintf(buf, "parent %s\n", p.String())
	}
	fmt.Fprintf(buf, "author %s\n", c.Author.String())
	fmt.Fprintf(buf, "committer %s\n", c.Committer.String())
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}
