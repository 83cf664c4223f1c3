// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the legacy keyword (.inp) model input file: one
// argument per line as "KEYWORD: value", with ';' commenting a line out and
// %KEYWORD% tokens in filename templates resolved from the current argument
// values.
package inp

import (
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// DefaultOutfileName names the input file written for a generated case
const DefaultOutfileName = "FRACTURE_INITIALIZATION.INP"

var (
	keywordPattern = regexp.MustCompile(`^[; ]*([a-zA-Z][a-zA-Z0-9_, -]*)`)
	commentPattern = regexp.MustCompile(`^;(.*)`)
)

// ArgInput stores one input line: its keyword, its value and whether the
// line is commented out
type ArgInput struct {
	Keyword      string
	Value        string
	Unit         string // optional unit token following the value
	CommentedOut bool

	// line reconstruction
	fields   []string
	valueIdx int // index of the value field; -1 when the whole line is the value
}

// NewArgInput parses one line
func NewArgInput(line string) *ArgInput {
	o := &ArgInput{valueIdx: -1}
	if m := commentPattern.FindStringSubmatch(line); m != nil {
		o.CommentedOut = true
		line = m[1]
	}
	o.Value = line
	o.fields = strings.Fields(line)
	if len(o.fields) == 0 {
		o.fields = []string{""}
	}
	if m := keywordPattern.FindStringSubmatch(o.fields[0]); m != nil {
		o.Keyword = m[1]
	}

	// with a colon the field after it is the value; otherwise the whole
	// line is the value
	if strings.Contains(line, ": ") || strings.HasSuffix(line, ":") {
		for i, fld := range o.fields {
			if strings.HasSuffix(fld, ":") {
				if i+1 < len(o.fields) {
					o.Value = o.fields[i+1]
				} else {
					o.Value = "NONE"
				}
				o.valueIdx = i + 1
				if i+2 < len(o.fields) {
					o.Unit = o.fields[i+2]
				}
			}
		}
	}
	return o
}

// UpdateValue replaces the line's value, uncommenting it by default
func (o *ArgInput) UpdateValue(newValue string, keepComment bool) {
	if !keepComment {
		o.CommentedOut = false
	}
	if o.valueIdx > 0 {
		if o.valueIdx < len(o.fields) {
			o.fields[o.valueIdx] = newValue
		} else {
			o.fields = append(o.fields, newValue)
		}
	} else {
		o.fields = strings.Fields(newValue)
	}
	o.Value = newValue
}

// OutputLine reconstructs the input line
func (o *ArgInput) OutputLine() string {
	line := strings.Join(o.fields, " ")
	if o.CommentedOut {
		return ";" + line
	}
	return line
}

// InputFile stores the data of an entire model input file together with the
// filename templates used to place its outputs
type InputFile struct {
	Args    map[string]*ArgInput // keyword → argument
	Order   []string             // keywords in file order
	Formats map[string]string    // outfile key → filename template with %KEYWORD% tokens

	// derived per case
	OutfileName string            // resolved name of the input file itself
	RAMreq      float64           // estimated memory requirement [GB]
	formatArgs  map[string]string // template tokens without a matching argument line
}

// ReadInputFile parses the initial input file at path
func ReadInputFile(path string, formats map[string]string) (*InputFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, chk.Err("cannot read input file: %v", err)
	}
	return ParseInputFile(string(b), formats)
}

// ParseInputFile parses input file content
func ParseInputFile(content string, formats map[string]string) (*InputFile, error) {
	o := &InputFile{
		Args:        make(map[string]*ArgInput),
		Formats:     make(map[string]string),
		OutfileName: DefaultOutfileName,
		formatArgs:  make(map[string]string),
	}
	for k, v := range formats {
		o.Formats[k] = v
	}
	if _, ok := o.Formats["input_file"]; !ok {
		o.Formats["input_file"] = o.OutfileName
	}
	stripLead := regexp.MustCompile(`^(;+)\s+`)
	for _, line := range strings.Split(content, "\n") {
		line = stripLead.ReplaceAllString(line, "$1")
		arg := NewArgInput(line)
		if _, dup := o.Args[arg.Keyword]; dup && arg.Keyword != "" {
			continue
		}
		o.Order = append(o.Order, arg.Keyword)
		o.Args[arg.Keyword] = arg
	}
	return o, nil
}

// Clone returns an independent copy carrying the given filename formats
// (or this file's formats when nil)
func (o *InputFile) Clone(formats map[string]string) *InputFile {
	if formats == nil {
		formats = o.Formats
	}
	clone := &InputFile{
		Args:        make(map[string]*ArgInput),
		Formats:     make(map[string]string),
		OutfileName: DefaultOutfileName,
		formatArgs:  make(map[string]string),
	}
	for k, v := range formats {
		clone.Formats[k] = v
	}
	if _, ok := clone.Formats["input_file"]; !ok {
		clone.Formats["input_file"] = clone.OutfileName
	}
	for _, key := range o.Order {
		clone.Order = append(clone.Order, key)
		clone.Args[key] = NewArgInput(o.Args[key].OutputLine())
	}
	return clone
}

// UpdateArgs applies keyword → value updates. Keywords without an argument
// line are kept as filename-template tokens only.
func (o *InputFile) UpdateArgs(args map[string]string) {
	for key, val := range args {
		if arg, ok := o.Args[key]; ok {
			arg.UpdateValue(val, false)
		} else {
			o.formatArgs[key] = val
		}
	}
}

// GetValue returns the value of a keyword argument
func (o *InputFile) GetValue(key string) (string, bool) {
	arg, ok := o.Args[key]
	if !ok || arg.CommentedOut {
		return "", false
	}
	return arg.Value, true
}

// GetValueUnit returns the value and the unit token of a keyword argument
func (o *InputFile) GetValueUnit(key string) (value, unit string, ok bool) {
	arg, found := o.Args[key]
	if !found || arg.CommentedOut {
		return "", "", false
	}
	return arg.Value, arg.Unit, true
}

// ConstructFileNames resolves the %KEYWORD% tokens of every filename
// template, updates the matching argument lines and creates the output
// directories
func (o *InputFile) ConstructFileNames(mkdirs bool) error {

	outfiles := make(map[string]string)
	for k, v := range o.Formats {
		outfiles[k] = v
	}
	replace := func(token, value string) {
		pat := regexp.MustCompile(`(?i)%` + regexp.QuoteMeta(token) + `%`)
		for name := range outfiles {
			outfiles[name] = pat.ReplaceAllString(outfiles[name], value)
		}
	}
	for key, arg := range o.Args {
		if key == "" {
			continue
		}
		replace(key, arg.Value)
	}
	for key, val := range o.formatArgs {
		replace(key, val)
	}

	for name, resolved := range outfiles {
		if arg, ok := o.Args[name]; ok {
			arg.UpdateValue(resolved, false)
		} else if name != "input_file" {
			return chk.Err("outfile %q is not defined in the initialisation file", name)
		}
		if mkdirs {
			if dir := filepath.Dir(resolved); dir != "." {
				if err := os.MkdirAll(dir, 0777); err != nil {
					return chk.Err("cannot create output directory %q: %v", dir, err)
				}
			}
		}
	}
	o.OutfileName = outfiles["input_file"]
	return nil
}

// String returns the input file content
func (o *InputFile) String() string {
	var sb strings.Builder
	for _, key := range o.Order {
		sb.WriteString(o.Args[key].OutputLine())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Write resolves filenames and writes the input file, optionally under
// altPath
func (o *InputFile) Write(altPath string) error {
	if err := o.ConstructFileNames(true); err != nil {
		return err
	}
	fn := o.OutfileName
	if altPath != "" {
		fn = filepath.Join(altPath, fn)
	}
	io.WriteStringToFileD(filepath.Dir(fn), filepath.Base(fn), o.String())
	return nil
}

// EstimateRAM estimates the memory requirement [GB] of a map with ncells
// cells, from the measured scaling of the coefficient storage
func EstimateRAM(ncells int) float64 {
	totCoef := float64(ncells) * float64(ncells)
	kb := 0.00505193 * math.Pow(totCoef, 0.72578813)
	return kb / (1 << 20)
}
