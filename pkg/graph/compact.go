package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned when an artifact cannot be decoded.
var ErrMalformed = errors.New("malformed graph artifact")

// compact is the artifact envelope. Tuples are positional:
//
//	n: [id, title, summary?, keywords?]
//	e: [source, target, kindCode]
type compact struct {
	N []json.RawMessage `json:"n"`
	E []json.RawMessage `json:"e"`
}

// Encode serializes g into the compact artifact without indentation.
func Encode(g *Graph) ([]byte, error) {
	out := struct {
		N [][]any `json:"n"`
		E [][]any `json:"e"`
	}{
		N: make([][]any, 0, len(g.Nodes)),
		E: make([][]any, 0, len(g.Edges)),
	}

	for _, n := range g.Nodes {
		out.N = append(out.N, nodeTuple(n))
	}
	for _, e := range g.Edges {
		out.E = append(out.E, []any{e.Source, e.Target, e.Kind.Code()})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// nodeTuple drops summary and keywords when both are empty, and keywords when
// only they are empty.
func nodeTuple(n *Node) []any {
	t := []any{n.ID, n.Title}
	if n.Summary == "" && len(n.Keywords) == 0 {
		return t
	}
	t = append(t, n.Summary)
	if len(n.Keywords) > 0 {
		t = append(t, n.Keywords)
	}
	return t
}

// Decode parses a compact artifact. Trailing tuple fields beyond the known ones
// are ignored; edges are returned as stored, dangling or not.
func Decode(data []byte) (*Graph, error) {
	var raw compact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	g := NewGraph()
	for i, t := range raw.N {
		n, err := decodeNode(t)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d: %v", ErrMalformed, i, err)
		}
		g.AddNode(n)
	}
	for i, t := range raw.E {
		e, err := decodeEdge(t)
		if err != nil {
			return nil, fmt.Errorf("%w: edge %d: %v", ErrMalformed, i, err)
		}
		g.AddEdge(e)
	}
	return g, nil
}

func decodeNode(data json.RawMessage) (*Node, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if len(fields) < 2 {
		return nil, fmt.Errorf("want at least 2 fields, got %d", len(fields))
	}

	n := &Node{}
	if err := json.Unmarshal(fields[0], &n.ID); err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	if err := json.Unmarshal(fields[1], &n.Title); err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}
	if len(fields) > 2 {
		if err := json.Unmarshal(fields[2], &n.Summary); err != nil {
			return nil, fmt.Errorf("summary: %w", err)
		}
	}
	if len(fields) > 3 {
		if err := json.Unmarshal(fields[3], &n.Keywords); err != nil {
			return nil, fmt.Errorf("keywords: %w", err)
		}
	}
	if n.ID == "" {
		return nil, errors.New("empty id")
	}
	return n, nil
}

func decodeEdge(data json.RawMessage) (*Edge, error) {
	var fields []string
	if err := json.Unmarshal(data, &fields); err != nil {
		// Tolerate non-string trailing fields by decoding the prefix only.
		var loose []json.RawMessage
		if err2 := json.Unmarshal(data, &loose); err2 != nil || len(loose) < 3 {
			return nil, err
		}
		fields = make([]string, 3)
		for i := range fields {
			if err := json.Unmarshal(loose[i], &fields[i]); err != nil {
				return nil, err
			}
		}
	}
	if len(fields) < 3 {
		return nil, fmt.Errorf("want 3 fields, got %d", len(fields))
	}
	return &Edge{Source: fields[0], Target: fields[1], Kind: KindFromCode(fields[2])}, nil
}
