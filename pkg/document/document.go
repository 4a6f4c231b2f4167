// Package document models the events/snapshots envelope exchanged with the
// upstream market fetchers and downstream renderers. Snapshots are read once
// and augmented with a posterior; every other field passes through untouched.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/marketpriors/consensus-go/pkg/consensus"
)

// Document is the top-level envelope: a list of events, each with a list of
// snapshots.
type Document struct {
	Events []*Event
}

// Event is one tracked outcome (e.g. a payroll release) with its snapshot
// history. Fields other than "snapshots" are carried through verbatim.
type Event struct {
	fields    map[string]json.RawMessage
	Snapshots []*Snapshot
}

// Snapshot is one cross-source observation. The raw fields are retained so
// that metadata this engine does not understand survives the round trip; the
// only mutation is attaching the posterior.
type Snapshot struct {
	fields    map[string]json.RawMessage
	posterior *consensus.Posterior
	hasResult bool
}

// outputModelNote is the explanatory note attached to the output document's
// top-level model block.
const outputModelNote = "Posterior computed from source distributions using a Dirichlet likelihood; kappa scaled by log(volume) when available."

// Parse decodes an input document. Missing or malformed event and snapshot
// lists degrade to empty rather than failing the whole document.
func Parse(data []byte) (*Document, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	doc := &Document{}
	var rawEvents []json.RawMessage
	if raw, ok := payload["events"]; ok {
		if err := json.Unmarshal(raw, &rawEvents); err != nil {
			rawEvents = nil
		}
	}
	for _, rawEvent := range rawEvents {
		event, err := parseEvent(rawEvent)
		if err != nil {
			continue
		}
		doc.Events = append(doc.Events, event)
	}
	return doc, nil
}

func parseEvent(raw json.RawMessage) (*Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	event := &Event{fields: fields}
	var rawSnaps []json.RawMessage
	if snaps, ok := fields["snapshots"]; ok {
		if err := json.Unmarshal(snaps, &rawSnaps); err != nil {
			rawSnaps = nil
		}
	}
	delete(fields, "snapshots")
	for _, rawSnap := range rawSnaps {
		var snapFields map[string]json.RawMessage
		if err := json.Unmarshal(rawSnap, &snapFields); err != nil {
			continue
		}
		delete(snapFields, "posterior")
		event.Snapshots = append(event.Snapshots, &Snapshot{fields: snapFields})
	}
	return event, nil
}

// numberField coerces a JSON value to a float the way the upstream feeds
// sometimes emit them: plain numbers and numeric strings both parse, anything
// else (including null) degrades to nil.
func numberField(raw json.RawMessage) *float64 {
	// Unmarshaling null into a float64 succeeds without assigning, so null
	// has to be rejected up front to keep open bounds open.
	if len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &v
		}
	}
	return nil
}

// Data extracts the typed source distributions and metadata for the
// consensus pipeline. Decoding degrades per entry, matching the tolerant
// reading of the upstream feed: a source or metadata entry of the wrong shape
// is skipped without touching its siblings, and non-numeric field values
// degrade to nil inside an otherwise valid entry.
func (s *Snapshot) Data() consensus.Snapshot {
	snap := consensus.Snapshot{
		Sources: map[string][]consensus.Range{},
		Meta:    map[string]consensus.SourceMeta{},
	}
	if raw, ok := s.fields["sources"]; ok {
		var bySource map[string]json.RawMessage
		if err := json.Unmarshal(raw, &bySource); err == nil {
			for name, rawList := range bySource {
				var rawRanges []json.RawMessage
				if err := json.Unmarshal(rawList, &rawRanges); err != nil {
					continue
				}
				ranges := make([]consensus.Range, 0, len(rawRanges))
				for _, rawRange := range rawRanges {
					var fields struct {
						Lower json.RawMessage `json:"lower"`
						Upper json.RawMessage `json:"upper"`
						Prob  json.RawMessage `json:"prob"`
					}
					if err := json.Unmarshal(rawRange, &fields); err != nil {
						continue
					}
					ranges = append(ranges, consensus.Range{
						Lower: numberField(fields.Lower),
						Upper: numberField(fields.Upper),
						Prob:  numberField(fields.Prob),
					})
				}
				snap.Sources[name] = ranges
			}
		}
	}
	if raw, ok := s.fields["source_meta"]; ok {
		var bySource map[string]json.RawMessage
		if err := json.Unmarshal(raw, &bySource); err == nil {
			for name, rawMeta := range bySource {
				var fields struct {
					Volume json.RawMessage `json:"volume"`
				}
				if err := json.Unmarshal(rawMeta, &fields); err != nil {
					continue
				}
				snap.Meta[name] = consensus.SourceMeta{Volume: numberField(fields.Volume)}
			}
		}
	}
	return snap
}

// SetPosterior attaches the computed posterior; nil records an explicit null
// for snapshots where no posterior was computable.
func (s *Snapshot) SetPosterior(p *consensus.Posterior) {
	s.posterior = p
	s.hasResult = true
}

// Posterior returns the attached posterior, if any.
func (s *Snapshot) Posterior() (*consensus.Posterior, bool) {
	return s.posterior, s.hasResult
}

// MarshalJSON emits the snapshot's original fields plus the posterior.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.fields)+1)
	for k, v := range s.fields {
		out[k] = v
	}
	if s.hasResult {
		raw, err := json.Marshal(s.posterior)
		if err != nil {
			return nil, err
		}
		out["posterior"] = raw
	}
	return json.Marshal(out)
}

// MarshalJSON emits the event's original fields plus its snapshots.
func (e *Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(e.fields)+1)
	for k, v := range e.fields {
		out[k] = v
	}
	snaps := e.Snapshots
	if snaps == nil {
		snaps = []*Snapshot{}
	}
	raw, err := json.Marshal(snaps)
	if err != nil {
		return nil, err
	}
	out["snapshots"] = raw
	return json.Marshal(out)
}

// Encode serializes the augmented document in the output contract shape:
// refresh timestamp, events, and a model note block.
func (d *Document) Encode(now time.Time) ([]byte, error) {
	events := d.Events
	if events == nil {
		events = []*Event{}
	}
	payload := struct {
		UpdatedAt string   `json:"updated_at"`
		Events    []*Event `json:"events"`
		Model     struct {
			Kind  string `json:"kind"`
			Notes string `json:"notes"`
		} `json:"model"`
	}{
		UpdatedAt: now.UTC().Format("2006-01-02T15:04:05Z"),
		Events:    events,
	}
	payload.Model.Kind = consensus.ModelKindDirichlet
	payload.Model.Notes = outputModelNote

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadFile loads and parses a document from disk.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Parse(data)
}

// WriteFile serializes the document and writes it to disk, creating parent
// directories as needed.
func (d *Document) WriteFile(path string, now time.Time) error {
	data, err := d.Encode(now)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}
