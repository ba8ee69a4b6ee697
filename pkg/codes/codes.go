// Package codes normalizes Chinese A-share stock codes to the canonical
// 'sh.600000' / 'sz.000001' form used across the data-source layer.
package codes

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	rePrefixed = regexp.MustCompile(`^(?i)(sh|sz)\.?([0-9]{6})$`)
	reSuffixed = regexp.MustCompile(`^([0-9]{6})\.?(?i:(sh|sz))$`)
	reBare     = regexp.MustCompile(`^[0-9]{6}$`)
)

// Normalize converts a raw stock code to canonical form.
//
// Accepted inputs:
//   - 'sh.600000', 'SZ.000001' (already prefixed, any case)
//   - 'sh600000', 'sz000001' (prefix without dot)
//   - '600000.SH', '000001sz' (exchange suffix)
//   - '600000' (bare six digits; '6xxxxx' is Shanghai, anything else Shenzhen)
//
// Anything else is rejected.
func Normalize(code string) (string, error) {
	raw := strings.TrimSpace(code)
	if raw == "" {
		return "", fmt.Errorf("code is required")
	}

	if m := rePrefixed.FindStringSubmatch(raw); m != nil {
		return strings.ToLower(m[1]) + "." + m[2], nil
	}
	if m := reSuffixed.FindStringSubmatch(raw); m != nil {
		return strings.ToLower(m[2]) + "." + m[1], nil
	}
	if reBare.MatchString(raw) {
		if strings.HasPrefix(raw, "6") {
			return "sh." + raw, nil
		}
		return "sz." + raw, nil
	}

	return "", fmt.Errorf("unsupported code format %q; examples: 'sh.600000', '600000', '000001.SZ'", code)
}

// Split breaks a canonical code into exchange ('sh'/'sz') and the
// six-digit number. The input is normalized first.
func Split(code string) (exchange, number string, err error) {
	norm, err := Normalize(code)
	if err != nil {
		return "", "", err
	}
	return norm[:2], norm[3:], nil
}
