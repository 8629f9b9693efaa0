package response

import (
	"errors"
	"strings"
)

// ChallengeStatus is the respStatus value extracted from a challenge-script
// body.
type ChallengeStatus int

const (
	ChallengeStatusUnknown ChallengeStatus = iota
	ChallengeStatusChallenge
	ChallengeStatusError
)

// ErrNotChallengeScript means the body doesn't even start (after any
// leading whitespace) with the expected var-respStatus line; the caller should treat this as "not this
// format" rather than a hard parse failure of a recognised-but-broken blob.
var ErrNotChallengeScript = errors.New("response: not a challenge-script body")

// errChallengeScriptMalformed covers any deviation once the body was
// recognised as a challenge script (the prefix matched) — a hard failure
// per spec.md §4.3.
var errChallengeScriptMalformed = errors.New("response: malformed challenge-script body")

const (
	prefixStatus   = `var respStatus = "`
	prefixPrompt   = `var respMsg = "`
	prefixInputStr = `thisForm.inputStr.value = "`
)

// parsedChallenge holds the three extracted strings, unescaped exactly as
// they appeared on the wire (spec.md §4.3: "not unescaped — the protocol
// emits bare ASCII").
type parsedChallenge struct {
	Status   ChallengeStatus
	Prompt   string
	InputStr string
}

// parseChallengeScript implements the line-anchored parser of spec.md §4.3.
// Each of the three lines is of the form `<prefix>"<value>";` followed by a
// newline; arbitrary whitespace may separate the lines. The respMsg line is
// always required. The inputStr line is required only when respStatus is
// "Challenge" — an Error status may omit it. Any other deviation, or
// trailing non-whitespace bytes once parsing has established which lines
// are present, is a hard failure.
func parseChallengeScript(body []byte) (parsedChallenge, error) {
	s := string(body)

	rest, ok := consumePrefix(trimLeadingSpace(s), prefixStatus)
	if !ok {
		return parsedChallenge{}, ErrNotChallengeScript
	}

	statusStr, rest, ok := consumeQuotedLine(rest)
	if !ok {
		return parsedChallenge{}, errChallengeScriptMalformed
	}

	var status ChallengeStatus
	switch {
	case strings.HasPrefix(statusStr, "Challenge"):
		status = ChallengeStatusChallenge
	case strings.HasPrefix(statusStr, "Error"):
		status = ChallengeStatusError
	default:
		return parsedChallenge{}, errChallengeScriptMalformed
	}

	rest = trimLeadingSpace(rest)
	rest, ok = consumePrefix(rest, prefixPrompt)
	if !ok {
		return parsedChallenge{}, errChallengeScriptMalformed
	}

	prompt, rest, ok := consumeQuotedLine(rest)
	if !ok {
		return parsedChallenge{}, errChallengeScriptMalformed
	}

	result := parsedChallenge{Status: status, Prompt: prompt}

	afterPrompt := trimLeadingSpace(rest)
	inputRest, ok := consumePrefix(afterPrompt, prefixInputStr)
	if !ok {
		if status == ChallengeStatusChallenge {
			return parsedChallenge{}, errChallengeScriptMalformed
		}
		// Error status: the inputStr line is optional.
		if trimLeadingSpace(rest) != "" {
			return parsedChallenge{}, errChallengeScriptMalformed
		}
		return result, nil
	}

	inputStr, tail, ok := consumeQuotedLine(inputRest)
	if !ok {
		return parsedChallenge{}, errChallengeScriptMalformed
	}
	result.InputStr = inputStr

	if trimLeadingSpace(tail) != "" {
		return parsedChallenge{}, errChallengeScriptMalformed
	}

	return result, nil
}

func trimLeadingSpace(s string) string {
	i := 0
	for i < len(s) && isSpaceByte(s[i]) {
		i++
	}
	return s[i:]
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func consumePrefix(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

// consumeQuotedLine reads up to the next newline, which must be preceded
// immediately by `";`, and returns the quoted value plus whatever follows
// the newline.
func consumeQuotedLine(s string) (value string, rest string, ok bool) {
	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		return "", "", false
	}
	line := s[:nl]
	if len(line) < 2 || !strings.HasSuffix(line, "\";") {
		return "", "", false
	}
	value = line[:len(line)-2]
	return value, s[nl+1:], true
}
