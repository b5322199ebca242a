package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Входные данные
	InputInfo   Code = 1000
	InputRead   Code = 1001
	InputDecode Code = 1002
	// Конфигурация
	ConfigInvalid Code = 1101

	// Импорт библиотек
	ImportInfo     Code = 2000
	ImportNotFound Code = 2001
	ImportDecode   Code = 2002
	ImportSchema   Code = 2003
	ImportSpanned  Code = 2004
	ImportExport   Code = 2005

	// Слияние и обрезка
	MergeInfo              Code = 3000
	MergeNameCollision     Code = 3001
	MergeArchConflict      Code = 3002
	MergeDatatypeCollision Code = 3003

	// Well-formedness
	WfInfo                  Code = 4000
	WfDuplicateName         Code = 4001
	WfUnknownModule         Code = 4002
	WfDuplicateParam        Code = 4003
	WfUnknownCallee         Code = 4004
	WfPrunedCallee          Code = 4005
	WfArity                 Code = 4006
	WfPrivateCallee         Code = 4007
	WfSpecClauses           Code = 4008
	WfMissingDecreases      Code = 4009
	WfAssumeForbidden       Code = 4010
	WfExternalBodyForbidden Code = 4011
	WfUnknownTrait          Code = 4012
	WfUnknownDatatype       Code = 4013
	WfFlavor                Code = 4014
	WfUnboundVar            Code = 4015
	WfMissingReturn         Code = 4016

	// advisories
	WfAssumeUsed        Code = 4101
	WfNeedlessDecreases Code = 4102
	WfTrustedBody       Code = 4103

	// Трейты
	TraitMissingMethod Code = 4501
	TraitUnknownMethod Code = 4502
	TraitDuplicateImpl Code = 4503
	TraitImplMismatch  Code = 4504

	AutospecUnknown  Code = 4601
	AutospecMismatch Code = 4602

	// Режимы (spec/proof/exec)
	ModeInfo             Code = 5000
	ModeSpecCallsNonSpec Code = 5001
	ModeProofCallsExec   Code = 5002
	ModeGhostInExec      Code = 5003
	ModeParam            Code = 5004

	// Фильтр
	FilterInfo            Code = 6000
	FilterUnknownModule   Code = 6001
	FilterUnknownFunction Code = 6002
	FilterInvalid         Code = 6003

	// Верификация
	VerifyInfo                Code = 7000
	VerifyPostcondition       Code = 7001
	VerifyPrecondition        Code = 7002
	VerifyAssertion           Code = 7003
	VerifyInconclusive        Code = 7004
	VerifyDecreases           Code = 7005
	VerifyTriggerMissing      Code = 7101
	VerifyTriggerChosen       Code = 7102
	VerifyTriggerExplanation  Code = 7103
	VerifyInterpreterOverflow Code = 7201

	// Солвер
	SolverInfo        Code = 8000
	SolverCrash       Code = 8001
	SolverUnavailable Code = 8002
	SolverBadOutput   Code = 8003

	Internal Code = 9001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:               "Unknown error",
		InputInfo:                 "Input information",
		InputRead:                 "Failed to read input",
		InputDecode:               "Failed to deserialize unit",
		ConfigInvalid:             "Invalid configuration",
		ImportInfo:                "Import information",
		ImportNotFound:            "Library file not found",
		ImportDecode:              "Failed to decode library file",
		ImportSchema:              "Unsupported library schema",
		ImportSpanned:             "Import error carries source spans",
		ImportExport:              "Failed to export unit",
		MergeInfo:                 "Merge information",
		MergeNameCollision:        "Name collision across units",
		MergeArchConflict:         "Conflicting architecture parameters",
		MergeDatatypeCollision:    "Datatype collision across units",
		WfInfo:                    "Well-formedness information",
		WfDuplicateName:           "Duplicate item name",
		WfUnknownModule:           "Item owned by undeclared module",
		WfDuplicateParam:          "Duplicate parameter name",
		WfUnknownCallee:           "Call to undeclared function",
		WfPrunedCallee:            "Call to function that is not reachable",
		WfArity:                   "Wrong number of arguments",
		WfPrivateCallee:           "Call to private function of another module",
		WfSpecClauses:             "Spec function with requires/ensures",
		WfMissingDecreases:        "Recursive function without decreases",
		WfAssumeForbidden:         "assume is not allowed",
		WfExternalBodyForbidden:   "external_body is not allowed",
		WfUnknownTrait:            "Unknown trait",
		WfUnknownDatatype:         "Unknown datatype",
		WfFlavor:                  "Expression form not allowed at this stage",
		WfUnboundVar:              "Unbound variable",
		WfMissingReturn:           "ensures mentions the return value of a function without one",
		WfAssumeUsed:              "assume used",
		WfNeedlessDecreases:       "decreases on a non-recursive function",
		WfTrustedBody:             "Trusted external body",
		TraitMissingMethod:        "Trait impl is missing a method",
		TraitUnknownMethod:        "Impl method not declared by the trait",
		TraitDuplicateImpl:        "Duplicate trait impl",
		TraitImplMismatch:         "Impl method signature differs from the trait",
		AutospecUnknown:           "autospec target not found",
		AutospecMismatch:          "autospec target is incompatible",
		ModeInfo:                  "Mode information",
		ModeSpecCallsNonSpec:      "Spec code calls non-spec function",
		ModeProofCallsExec:        "Proof code calls exec function",
		ModeGhostInExec:           "Ghost code in executable position",
		ModeParam:                 "Parameter mode mismatch",
		FilterInfo:                "Filter information",
		FilterUnknownModule:       "Module not found",
		FilterUnknownFunction:     "Function not found",
		FilterInvalid:             "Invalid verification filter",
		VerifyInfo:                "Verification information",
		VerifyPostcondition:       "Postcondition not satisfied",
		VerifyPrecondition:        "Precondition not satisfied",
		VerifyAssertion:           "Assertion failed",
		VerifyInconclusive:        "Verification inconclusive",
		VerifyDecreases:           "Could not prove termination",
		VerifyTriggerMissing:      "Could not infer a trigger",
		VerifyTriggerChosen:       "Automatically chosen trigger",
		VerifyTriggerExplanation:  "Low-confidence triggers",
		VerifyInterpreterOverflow: "Interpreter step limit exceeded",
		SolverInfo:                "Solver information",
		SolverCrash:               "Solver crashed",
		SolverUnavailable:         "Solver not available",
		SolverBadOutput:           "Unexpected solver output",
		Internal:                  "Internal error",
	}
)

func (c Code) ID() string {
	if c == UnknownCode {
		return "V0000"
	}
	return fmt.Sprintf("V%04d", int(c))
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
