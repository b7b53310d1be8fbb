package origin

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NethermindEth/juno-devnet/core"
	"github.com/NethermindEth/juno-devnet/core/felt"
	"github.com/NethermindEth/juno-devnet/utils"
)

// Class is the starknet_getClass result. Exactly one of SierraProgram and
// Program is set.
//
// https://github.com/starkware-libs/starknet-specs/blob/v0.7.1/api/starknet_api_openrpc.json
type Class struct {
	SierraProgram        []*felt.Felt    `json:"sierra_program,omitempty"`
	Program              string          `json:"program,omitempty"`
	ContractClassVersion string          `json:"contract_class_version,omitempty"`
	EntryPoints          EntryPoints     `json:"entry_points_by_type"`
	Abi                  json.RawMessage `json:"abi,omitempty"`
}

type EntryPoints struct {
	Constructor []EntryPoint `json:"CONSTRUCTOR"`
	External    []EntryPoint `json:"EXTERNAL"`
	L1Handler   []EntryPoint `json:"L1_HANDLER"`
}

type EntryPoint struct {
	Index    *uint64    `json:"function_idx,omitempty"`
	Offset   *felt.Felt `json:"offset,omitempty"`
	Selector *felt.Felt `json:"selector"`
}

var errEmptyClass = errors.New("class has neither a sierra nor a legacy program")

func adaptClass(class *Class) (core.Class, error) {
	switch {
	case len(class.SierraProgram) > 0:
		return adaptSierraClass(class)
	case class.Program != "":
		return adaptDeprecatedCairoClass(class)
	default:
		return nil, errEmptyClass
	}
}

func adaptSierraClass(class *Class) (*core.SierraClass, error) {
	sierra := &core.SierraClass{
		Program:         class.SierraProgram,
		SemanticVersion: class.ContractClassVersion,
	}

	// the sierra abi is a JSON document serialised into a string
	if len(class.Abi) > 0 {
		if err := json.Unmarshal(class.Abi, &sierra.Abi); err != nil {
			return nil, fmt.Errorf("sierra abi: %w", err)
		}
	}

	var err error
	if sierra.EntryPoints.Constructor, err = adaptSierraEntryPoints(class.EntryPoints.Constructor); err != nil {
		return nil, err
	}
	if sierra.EntryPoints.External, err = adaptSierraEntryPoints(class.EntryPoints.External); err != nil {
		return nil, err
	}
	if sierra.EntryPoints.L1Handler, err = adaptSierraEntryPoints(class.EntryPoints.L1Handler); err != nil {
		return nil, err
	}
	return sierra, nil
}

func adaptSierraEntryPoints(eps []EntryPoint) ([]core.SierraEntryPoint, error) {
	if eps == nil {
		return nil, nil
	}
	adapted := make([]core.SierraEntryPoint, len(eps))
	for i, ep := range eps {
		if ep.Index == nil {
			return nil, fmt.Errorf("sierra entry point %s has no function_idx", ep.Selector)
		}
		adapted[i] = core.SierraEntryPoint{Index: *ep.Index, Selector: ep.Selector}
	}
	return adapted, nil
}

func adaptDeprecatedCairoClass(class *Class) (*core.DeprecatedCairoClass, error) {
	program, err := utils.Gzip64Decode(class.Program)
	if err != nil {
		return nil, fmt.Errorf("legacy program: %w", err)
	}

	return &core.DeprecatedCairoClass{
		Abi:          class.Abi,
		Externals:    adaptDeprecatedEntryPoints(class.EntryPoints.External),
		L1Handlers:   adaptDeprecatedEntryPoints(class.EntryPoints.L1Handler),
		Constructors: adaptDeprecatedEntryPoints(class.EntryPoints.Constructor),
		Program:      program,
	}, nil
}

func adaptDeprecatedEntryPoints(eps []EntryPoint) []core.DeprecatedEntryPoint {
	if eps == nil {
		return nil
	}
	adapted := make([]core.DeprecatedEntryPoint, len(eps))
	for i, ep := range eps {
		adapted[i] = core.DeprecatedEntryPoint{Selector: ep.Selector, Offset: ep.Offset}
	}
	return adapted
}
