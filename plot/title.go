// plot/title.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package plot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultTitle is the title template used when a panel doesn't give one.
const DefaultTitle = "%(radar_name)s %(ele).1f Degree %(scan_type)s %(begin_year)04d-%(begin_month)02d-%(begin_day)02d %(begin_hour)02d:%(begin_minute)02d \n %(fancy_name)s "

var (
	ErrTemplateKey    = errors.New("template key not found")
	ErrTemplateFormat = errors.New("invalid template directive")
)

// FormatTitle fills in a title template from info. Templates use
// percent-style named directives, %(key)[flags][width][.precision]verb,
// where the verb is one of d i u f F e E g G s r x X o; %% is a literal
// percent sign. Keys may contain balanced parentheses.
// d i u truncate floats; x X o require integers, and the # flag gives
// them a 0x, 0X or 0o prefix.
func FormatTitle(tmpl string, info *Info) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(tmpl); {
		if tmpl[i] != '%' {
			sb.WriteByte(tmpl[i])
			i++
			continue
		}

		d, n, err := parseDirective(tmpl[i:])
		if err != nil {
			return "", fmt.Errorf("offset %d: %w", i, err)
		}
		i += n

		if d.verb == '%' {
			sb.WriteByte('%')
			continue
		}

		v, ok := info.Get(d.key)
		if !ok {
			return "", fmt.Errorf("%q: %w", d.key, ErrTemplateKey)
		}
		s, err := d.format(v)
		if err != nil {
			return "", fmt.Errorf("%%(%s)%c: %w", d.key, d.verb, err)
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

type directive struct {
	key         string
	flags       string
	width, prec int // -1 if not given
	verb        byte
}

// parseDirective parses the directive at the start of s, which must begin
// with '%', and returns it along with its length in bytes.
func parseDirective(s string) (directive, int, error) {
	d := directive{width: -1, prec: -1}
	if len(s) > 1 && s[1] == '%' {
		d.verb = '%'
		return d, 2, nil
	}
	if len(s) < 2 || s[1] != '(' {
		return d, 0, fmt.Errorf("directive without a key: %w", ErrTemplateFormat)
	}

	// Keys may contain balanced parentheses.
	end, depth := -1, 1
	for j := 2; j < len(s) && end == -1; j++ {
		switch s[j] {
		case '(':
			depth++
		case ')':
			if depth--; depth == 0 {
				end = j
			}
		}
	}
	if end == -1 {
		return d, 0, fmt.Errorf("unterminated key: %w", ErrTemplateFormat)
	}
	d.key = s[2:end]
	i := end + 1

	for i < len(s) && strings.IndexByte("-+ #0", s[i]) != -1 {
		d.flags += s[i : i+1]
		i++
	}
	digits := func() (int, bool) {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		n, err := strconv.Atoi(s[start:i])
		return n, err == nil
	}
	if n, ok := digits(); ok {
		d.width = n
	}
	if i < len(s) && s[i] == '.' {
		i++
		d.prec, _ = digits() // "%.f" means precision zero
	}
	// Length modifiers are accepted and ignored.
	for i < len(s) && strings.IndexByte("hlL", s[i]) != -1 {
		i++
	}

	if i == len(s) {
		return d, 0, fmt.Errorf("%%(%s): incomplete directive: %w", d.key, ErrTemplateFormat)
	}
	d.verb = s[i]
	if strings.IndexByte("diufFeEgGsrxXo", d.verb) == -1 {
		return d, 0, fmt.Errorf("%%(%s): unsupported conversion %q: %w", d.key, d.verb, ErrTemplateFormat)
	}
	return d, i + 1, nil
}

// goFormat returns the fmt format string for the directive with the given
// verb.
func (d directive) goFormat(verb byte) string {
	var sb strings.Builder
	sb.WriteByte('%')
	sb.WriteString(d.flags)
	if d.width >= 0 {
		sb.WriteString(strconv.Itoa(d.width))
	}
	if d.prec >= 0 {
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(d.prec))
	}
	sb.WriteByte(verb)
	return sb.String()
}

func (d directive) format(v any) (string, error) {
	switch d.verb {
	case 'd', 'i', 'u':
		n, ok := toInt(v)
		if !ok {
			return "", fmt.Errorf("%T is not a number: %w", v, ErrTemplateFormat)
		}
		return fmt.Sprintf(d.goFormat('d'), n), nil

	case 'x', 'X', 'o':
		n, ok := toInt(v)
		if _, isFloat := toFloatOnly(v); !ok || isFloat {
			return "", fmt.Errorf("%T is not an integer: %w", v, ErrTemplateFormat)
		}
		if strings.Contains(d.flags, "#") {
			return d.alternateInt(n), nil
		}
		return fmt.Sprintf(d.goFormat(d.verb), n), nil

	case 'f', 'F', 'e', 'E', 'g', 'G':
		f, ok := toFloat(v)
		if !ok {
			return "", fmt.Errorf("%T is not a number: %w", v, ErrTemplateFormat)
		}
		if (d.verb == 'g' || d.verb == 'G') && d.prec < 0 {
			d.prec = 6
		}
		return fmt.Sprintf(d.goFormat(d.verb), f), nil

	default: // 's', 'r'
		s := fmt.Sprint(v)
		if str, ok := v.(string); ok && d.verb == 'r' {
			s = "'" + str + "'"
		}
		d.flags = strings.ReplaceAll(d.flags, "0", "")
		return fmt.Sprintf(d.goFormat('s'), s), nil
	}
}

// alternateInt formats n in hexadecimal or octal with a 0x, 0X or 0o
// prefix. Zero padding goes between the prefix and the digits and the
// width includes the prefix.
func (d directive) alternateInt(n int64) string {
	base, prefix := 16, "0x"
	if d.verb == 'X' {
		prefix = "0X"
	} else if d.verb == 'o' {
		base, prefix = 8, "0o"
	}

	var sign string
	u := uint64(n)
	if n < 0 {
		sign, u = "-", uint64(-n)
	} else if strings.Contains(d.flags, "+") {
		sign = "+"
	} else if strings.Contains(d.flags, " ") {
		sign = " "
	}

	digits := strconv.FormatUint(u, base)
	if d.verb == 'X' {
		digits = strings.ToUpper(digits)
	}
	if d.prec > len(digits) {
		digits = strings.Repeat("0", d.prec-len(digits)) + digits
	}

	pad := max(d.width-len(sign)-len(prefix)-len(digits), 0)
	switch {
	case strings.Contains(d.flags, "-"):
		return sign + prefix + digits + strings.Repeat(" ", pad)
	case strings.Contains(d.flags, "0"):
		return sign + prefix + strings.Repeat("0", pad) + digits
	default:
		return strings.Repeat(" ", pad) + sign + prefix + digits
	}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// toFloatOnly returns v as a float64 if it is a floating-point value.
func toFloatOnly(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	if f, ok := toFloatOnly(v); ok {
		return f, true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}
