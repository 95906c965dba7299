package collector

import (
	"fmt"

	"github.com/mlsweep/sweepctl/internal/manifest"
)

// DecodeArguments maps a flat submitted-argument token vector back to named
// parameters using the flag order declared in the manifest. Tokens alternate
// flag name and value, in submission order. The decode is a pure function of
// its inputs.
func DecodeArguments(m *manifest.Manifest, tokens []string) (map[string]string, error) {
	want := 2 * len(m.Args)
	if len(tokens) != want {
		return nil, fmt.Errorf("expected %d argument tokens, got %d", want, len(tokens))
	}

	params := make(map[string]string, len(m.Args))
	for i, arg := range m.Args {
		flag := tokens[2*i]
		if flag != arg.Flag {
			return nil, fmt.Errorf("argument %d: expected flag %s, got %s", i, arg.Flag, flag)
		}
		params[arg.Param] = tokens[2*i+1]
	}

	return params, nil
}

// ResolveParams returns the named parameter set for a child run. Logged
// params are the authoritative, self-describing source; the submitted
// argument vector is only decoded positionally when a manifest param was
// never logged.
func ResolveParams(m *manifest.Manifest, logged map[string]string, tokens []string) (map[string]string, error) {
	complete := true
	for _, arg := range m.Args {
		if _, ok := logged[arg.Param]; !ok {
			complete = false
			break
		}
	}

	if complete {
		params := make(map[string]string, len(m.Args))
		for _, arg := range m.Args {
			params[arg.Param] = logged[arg.Param]
		}
		return params, nil
	}

	decoded, err := DecodeArguments(m, tokens)
	if err != nil {
		return nil, err
	}

	// Logged values win over positional decode where both exist.
	for _, arg := range m.Args {
		if v, ok := logged[arg.Param]; ok {
			decoded[arg.Param] = v
		}
	}
	return decoded, nil
}
