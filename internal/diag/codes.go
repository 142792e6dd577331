package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Спецификации
	SpecInfo            Code = 1000
	SpecUnsupported     Code = 1001
	SpecExternConflict  Code = 1002
	SpecExternDuplicate Code = 1003
	SpecExternInvalid   Code = 1004
	SpecInternal        Code = 1005

	// Проект / модули
	ProjInfo             Code = 5000
	ProjDuplicateModule  Code = 5001
	ProjMissingModule    Code = 5002
	ProjSelfImport       Code = 5003
	ProjImportCycle      Code = 5004
	ProjDecode           Code = 5005
	ProjDependencyFailed Code = 5006

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:          "Unknown error",
		SpecInfo:             "Specification information",
		SpecUnsupported:      "Unsupported specification feature",
		SpecExternConflict:   "Conflicting external specification",
		SpecExternDuplicate:  "Duplicate external specification",
		SpecExternInvalid:    "Invalid external specification",
		SpecInternal:         "Internal specification error",
		ProjInfo:             "Project information",
		ProjDuplicateModule:  "Duplicate module definition",
		ProjMissingModule:    "Missing module",
		ProjSelfImport:       "Module imports itself",
		ProjImportCycle:      "Import cycle detected",
		ProjDecode:           "Malformed module description",
		ProjDependencyFailed: "Dependency module has errors",
		ObsInfo:              "Observability information",
		ObsTimings:           "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SPC%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
