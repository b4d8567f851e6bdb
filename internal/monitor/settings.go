package monitor

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

type settings struct {
	HexMode         bool   `doc:"hexadecimal input mode"`
	MemDumpBytes    int    `doc:"default number of memory bytes to dump"`
	DisasmLines     int    `doc:"default number of lines to disassemble"`
	RunFrames       int    `doc:"default number of frames to run"`
	MaxStepLines    int    `doc:"max instructions to display when stepping"`
	NextDisasmAddr  uint16 `doc:"address of next disassembly"`
	NextMemDumpAddr uint16 `doc:"address of next memory dump"`
}

func newSettings() *settings {
	return &settings{
		MemDumpBytes: 64,
		DisasmLines:  10,
		RunFrames:    60,
		MaxStepLines: 20,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	settingsType := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, settingsType.NumField())
	for i := range settingsFields {
		f := settingsType.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   doc,
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for i, f := range settingsFields {
		v := value.Field(i)
		var line string
		switch f.kind {
		case reflect.Uint16:
			line = fmt.Sprintf("    %-16s $%04X", f.name, uint16(v.Uint()))
		default:
			line = fmt.Sprintf("    %-16s %v", f.name, v)
		}
		fmt.Fprintf(w, "%-28s (%s)\n", line, f.doc)
	}
}

// Kind returns the kind of the setting matching the unambiguous
// prefix key, or reflect.Invalid.
func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

// Set assigns value to the setting matching the unambiguous prefix
// key, returning the setting's full name.
func (s *settings) Set(key string, value any) (string, error) {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return "", err
	}

	vIn := reflect.ValueOf(value)
	if !vIn.Type().ConvertibleTo(f.typ) {
		return "", errors.New("invalid type")
	}
	reflect.ValueOf(s).Elem().Field(f.index).Set(vIn.Convert(f.typ))
	return f.name, nil
}
