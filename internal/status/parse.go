package status

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FeedParseError describes a status record the parser could not make sense
// of. It is attached to an Error-state node instead of failing the poll, so
// one bad record never blocks visibility into the rest of the graph.
type FeedParseError struct {
	Node   string
	Reason string
}

func (e *FeedParseError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("malformed status record: %s", e.Reason)
	}
	return fmt.Sprintf("malformed status record for %s: %s", e.Node, e.Reason)
}

// entry is one parsed "Key = value; /* comment */" line inside a block.
type entry struct {
	value   string
	comment string
}

// numeric status codes used by feeds that omit the symbolic comment.
var numericCodes = map[string]string{
	"0": codeNotReady,
	"1": codeReady,
	"2": codePrerun,
	"3": codeSubmitted,
	"4": codePostrun,
	"5": codeDone,
	"6": codeError,
}

// ParseFeed reads a whole status feed snapshot. The feed is a sequence of
// bracketed blocks of key/value lines; each block's Type key says whether it
// describes the DAG as a whole, a single node, or the reporting epilogue.
// Unreadable node records become Error-state nodes; only a reader failure
// returns an error.
func ParseFeed(r io.Reader) (Snapshot, error) {
	var (
		nodes   []NodeStatus
		summary *DAGSummary
		info    *FeedInfo
	)

	scanner := bufio.NewScanner(r)
	inBlock := false
	block := make(map[string]entry)

	flush := func() {
		defer func() {
			block = make(map[string]entry)
		}()
		switch strings.Trim(block["Type"].value, `"`) {
		case "DagStatus":
			summary = parseSummary(block)
		case "NodeStatus":
			nodes = append(nodes, parseNode(block))
		case "StatusEnd":
			info = &FeedInfo{
				RecordedAt: block["EndTime"].comment,
				NextUpdate: block["NextUpdate"].comment,
			}
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "["):
			inBlock = true
		case strings.HasPrefix(line, "]"):
			if inBlock {
				flush()
			}
			inBlock = false
		case inBlock && strings.Contains(line, "="):
			key, e := parseLine(line)
			if key != "" {
				block[key] = e
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("reading status feed: %w", err)
	}
	return NewSnapshot(nodes, summary, info), nil
}

// ParseFeedFile opens and parses a status feed file.
func ParseFeedFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()
	return ParseFeed(f)
}

// parseLine splits `Key = value; /* comment */` into its parts.
func parseLine(line string) (string, entry) {
	key, rest, ok := strings.Cut(line, "=")
	if !ok {
		return "", entry{}
	}
	value, comment, _ := strings.Cut(rest, ";")
	comment = strings.TrimSpace(comment)
	comment = strings.TrimPrefix(comment, "/*")
	comment = strings.TrimSuffix(comment, "*/")
	return strings.TrimSpace(key), entry{
		value:   unquote(strings.TrimSpace(value)),
		comment: unquote(strings.TrimSpace(comment)),
	}
}

func unquote(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// parseNode turns one NodeStatus block into a lifecycle record. The status
// code comes from the symbolic comment when present, falling back to the
// numeric value. Anything unrecognizable is preserved as an Error node.
func parseNode(block map[string]entry) NodeStatus {
	name := block["Node"].value
	if name == "" {
		perr := &FeedParseError{Reason: "node record without a Node key"}
		return NodeStatus{
			Name:         "(unnamed)",
			State:        Error,
			Detail:       perr.Error(),
			DetailedCode: block["NodeStatus"].value,
		}
	}

	code := block["NodeStatus"].comment
	if code == "" {
		if sym, ok := numericCodes[block["NodeStatus"].value]; ok {
			code = sym
		} else {
			code = block["NodeStatus"].value
		}
	}
	// Comments read like `STATUS_SUBMITTED ()`; only the first word is the code.
	if fields := strings.Fields(code); len(fields) > 0 {
		code = fields[0]
	}

	detail := block["StatusDetails"].value
	state, rawCode := MapCode(code, detail)
	return NodeStatus{
		Name:         name,
		State:        state,
		Retries:      atoi(block["RetryCount"].value),
		Detail:       detail,
		DetailedCode: rawCode,
	}
}

func parseSummary(block map[string]entry) *DAGSummary {
	dagStatus := block["DagStatus"].comment
	if dagStatus == "" {
		dagStatus = block["DagStatus"].value
	}
	if fields := strings.Fields(dagStatus); len(fields) > 0 {
		dagStatus = fields[0]
	}
	return &DAGSummary{
		Status:    dagStatus,
		Timestamp: block["Timestamp"].comment,
		Total:     atoi(block["NodesTotal"].value),
		Done:      atoi(block["NodesDone"].value),
		Pre:       atoi(block["NodesPre"].value),
		Queued:    atoi(block["NodesQueued"].value),
		Post:      atoi(block["NodesPost"].value),
		Ready:     atoi(block["NodesReady"].value),
		Unready:   atoi(block["NodesUnready"].value),
		Failed:    atoi(block["NodesFailed"].value),
		Held:      atoi(block["JobProcsHeld"].value),
		Idle:      atoi(block["JobProcsIdle"].value),
	}
}
