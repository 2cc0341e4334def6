package parser

import (
	"encoding/binary"
	"strings"
)

// Transfer syntax UIDs that change how the dataset is encoded. Every other
// syntax (including the compressed pixel syntaxes) uses explicit VR little
// endian for the header.
const (
	UIDImplicitVRLittleEndian         = "1.2.840.10008.1.2"
	UIDExplicitVRLittleEndian         = "1.2.840.10008.1.2.1"
	UIDDeflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"
	UIDExplicitVRBigEndian            = "1.2.840.10008.1.2.2"
)

// TransferSyntax describes the dataset encoding declared in the file meta group.
type TransferSyntax struct {
	UID      string
	Implicit bool
	Order    binary.ByteOrder
	Deflated bool
}

// metaSyntax is fixed for group 0002 regardless of the declared syntax.
var metaSyntax = TransferSyntax{UID: UIDExplicitVRLittleEndian, Order: binary.LittleEndian}

// LookupTransferSyntax resolves a transfer syntax UID. Unknown or empty UIDs
// fall back to explicit VR little endian.
func LookupTransferSyntax(uid string) TransferSyntax {
	uid = strings.TrimRight(uid, " \x00")
	ts := TransferSyntax{UID: uid, Order: binary.LittleEndian}
	switch uid {
	case UIDImplicitVRLittleEndian:
		ts.Implicit = true
	case UIDExplicitVRBigEndian:
		ts.Order = binary.BigEndian
	case UIDDeflatedExplicitVRLittleEndian:
		ts.Deflated = true
	case "":
		ts.UID = UIDExplicitVRLittleEndian
	}
	return ts
}
