package trackfile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/animevent/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// ErrReadOnly is returned when writing a document format that cannot be
// written back, such as CUE.
var ErrReadOnly = errors.New("track document is read-only")

// ErrUnsupportedFormat is returned for a file extension that is not a
// track document.
var ErrUnsupportedFormat = errors.New("unsupported track document format")

// Format is a track document encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatCUE
)

// FormatOf returns the document format for a file name.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// IsTrackFile reports whether path has a track document extension.
func IsTrackFile(path string) bool {
	_, err := FormatOf(path)
	return err == nil
}

// Document is the on-disk shape of a track. The json tags are the CUE
// field names.
type Document struct {
	ID       string     `yaml:"id,omitempty" json:"id,omitempty"`
	Duration float32    `yaml:"duration" json:"duration"`
	Events   []EventDoc `yaml:"events" json:"events"`
}

// EventDoc is the on-disk shape of one raw record.
type EventDoc struct {
	Time    float32    `yaml:"time" json:"time"`
	Name    string     `yaml:"name" json:"name"`
	Float   float32    `yaml:"float,omitempty" json:"float,omitempty"`
	Int     int32      `yaml:"int,omitempty" json:"int,omitempty"`
	String  string     `yaml:"string,omitempty" json:"string,omitempty"`
	Object  *ObjectDoc `yaml:"object,omitempty" json:"object,omitempty"`
	Options string     `yaml:"options,omitempty" json:"options,omitempty"`
}

// ObjectDoc is the on-disk shape of an object reference.
type ObjectDoc struct {
	ID   int64  `yaml:"id" json:"id"`
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// Record converts the document form to a raw record.
func (e EventDoc) Record() (ir.Record, error) {
	opts, err := ir.ParseMessageOptions(e.Options)
	if err != nil {
		return ir.Record{}, err
	}
	r := ir.Record{
		Time:        e.Time,
		Name:        e.Name,
		FloatParam:  e.Float,
		IntParam:    e.Int,
		StringParam: e.String,
		Options:     opts,
	}
	if e.Object != nil {
		r.Object = ir.ObjectRef{ID: e.Object.ID, Path: e.Object.Path}
	}
	return r, nil
}

// EventDocOf converts a raw record to its document form.
func EventDocOf(r ir.Record) EventDoc {
	e := EventDoc{
		Time:   r.Time,
		Name:   r.Name,
		Float:  r.FloatParam,
		Int:    r.IntParam,
		String: r.StringParam,
	}
	if !r.Object.IsZero() {
		e.Object = &ObjectDoc{ID: r.Object.ID, Path: r.Object.Path}
	}
	if r.Options != ir.RequireReceiver {
		e.Options = r.Options.String()
	}
	return e
}

// Track converts the document to a track. id overrides the document's own
// ID when non-empty.
func (d Document) Track(id string) (ir.Track, error) {
	if id == "" {
		id = d.ID
	}
	if id == "" {
		return ir.Track{}, errors.New("track document has no id")
	}
	records := make([]ir.Record, len(d.Events))
	for i, e := range d.Events {
		r, err := e.Record()
		if err != nil {
			return ir.Track{}, fmt.Errorf("event %d: %w", i, err)
		}
		records[i] = r
	}
	return ir.Track{ID: id, Duration: d.Duration, Records: records}, nil
}

// DocumentOf converts a track to its document form.
func DocumentOf(t ir.Track) Document {
	events := make([]EventDoc, len(t.Records))
	for i, r := range t.Records {
		events[i] = EventDocOf(r)
	}
	return Document{ID: t.ID, Duration: t.Duration, Events: events}
}

var (
	cueOnce   sync.Once
	cueCtx    *cue.Context
	cueSchema cue.Value
	cueErr    error
)

// trackSchema compiles schema.cue once and returns #Track.
//
// The context is shared, so callers must hold cueMu while building values.
func trackSchema() (*cue.Context, cue.Value, error) {
	cueOnce.Do(func() {
		cueCtx = cuecontext.New()
		v := cueCtx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			cueErr = fmt.Errorf("compile track schema: %w", err)
			return
		}
		cueSchema = v.LookupPath(cue.ParsePath("#Track"))
	})
	return cueCtx, cueSchema, cueErr
}

// cue.Context is not safe for concurrent use.
var cueMu sync.Mutex

// Validate checks a document against the #Track schema.
func Validate(d Document) error {
	cueMu.Lock()
	defer cueMu.Unlock()

	ctx, schema, err := trackSchema()
	if err != nil {
		return err
	}
	if d.Events == nil {
		d.Events = []EventDoc{}
	}
	v := schema.Unify(ctx.Encode(d))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid track document: %w", err)
	}
	return nil
}

// Parse decodes and validates a document. name is used in error messages.
func Parse(data []byte, format Format, name string) (Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("parse %s: %w", name, err)
		}
	case FormatCUE:
		d, err := parseCUE(data, name)
		if err != nil {
			return Document{}, err
		}
		doc = d
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	if err := Validate(doc); err != nil {
		return Document{}, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}

func parseCUE(data []byte, name string) (Document, error) {
	cueMu.Lock()
	defer cueMu.Unlock()

	ctx, schema, err := trackSchema()
	if err != nil {
		return Document{}, err
	}
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return Document{}, fmt.Errorf("parse %s: %w", name, err)
	}
	v = schema.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Document{}, fmt.Errorf("%s: invalid track document: %w", name, err)
	}

	var doc Document
	if err := v.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", name, err)
	}
	return doc, nil
}

// trackID returns the track ID implied by a file name.
func trackID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads a track document. The track ID is the document's id field,
// or the file name without its extension.
func Load(path string) (ir.Track, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return ir.Track{}, err
	}
	id := doc.ID
	if id == "" {
		id = trackID(path)
	}
	t, err := doc.Track(id)
	if err != nil {
		return ir.Track{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// LoadDocument reads and validates a track document without converting it.
func LoadDocument(path string) (Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read track document: %w", err)
	}
	return Parse(data, format, path)
}

// Save writes t as a YAML document, replacing path atomically.
// CUE paths return ErrReadOnly. A track that would not load back is
// rejected and path is left untouched.
func Save(path string, t ir.Track) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if format != FormatYAML {
		return fmt.Errorf("%w: %s", ErrReadOnly, path)
	}

	doc := DocumentOf(t)
	if err := Validate(doc); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
