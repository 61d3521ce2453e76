package ats

import (
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"github.com/llehouerou/go-ats/internal/format"
	"github.com/llehouerou/go-ats/internal/wire"
)

// MIMEType is the MIME type registered for ATS files.
const MIMEType = "application/x-ats"

// TypeATS is the filetype registration for ATS analysis files. Importing
// this package makes filetype.Match recognize them.
var TypeATS = filetype.NewType("ats", MIMEType)

func init() {
	filetype.AddMatcher(TypeATS, matchATS)
}

// matchATS accepts a buffer whose magic decodes to 123 in either byte
// order and, when the full header is present, whose type code is 1-4.
func matchATS(buf []byte) bool {
	order, err := format.DetectOrder(buf)
	if err != nil {
		return false
	}
	if len(buf) < format.HeaderSize {
		return true
	}
	h, err := format.ReadHeader(wire.NewReader(buf, order))
	if err != nil {
		return false
	}
	return format.Type(h.Type).Valid() && h.Type == float64(int(h.Type))
}

// Sniff reports whether buf looks like an ATS file.
func Sniff(buf []byte) bool {
	return filetype.IsType(buf, TypeATS)
}

// Kind returns the filetype kind of buf, which is TypeATS for ATS data.
func Kind(buf []byte) (types.Type, error) {
	return filetype.Match(buf)
}
