// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"path/filepath"
	"strings"

	"github.com/cpmech/gosl/io"

	"github.com/richardhaslam/netl-ap-map-flow/apm"
)

// WriteProfiles exports rows ("x") or columns ("z") of a field as comma
// separated text, one slice per line, for quick plotting outside the VTK
// pipeline. startIDs are 1-based per the legacy slice convention.
func WriteProfiles(fld *apm.DataField, filename, direction string, startIDs []int) error {

	var sb strings.Builder
	sb.WriteString(io.Sf("# %s profiles of %s at %v\n", direction, fld.FieldName, startIDs))
	for _, id := range startIDs {
		vec, err := fld.DataVect(direction, id)
		if err != nil {
			return err
		}
		vals := make([]string, len(vec))
		for i, v := range vec {
			vals[i] = io.Sf("%g", v)
		}
		sb.WriteString(strings.Join(vals, ", "))
		sb.WriteString("\n")
	}
	io.WriteStringToFileD(filepath.Dir(filename), filepath.Base(filename), sb.String())
	return nil
}
