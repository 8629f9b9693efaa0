package response

// XMLCallback handles a successfully parsed XML response whose root is not
// the well-known error envelope (`<response status="error">`). It returns
// whatever domain-specific result the caller cares about (e.g. a parsed
// IpInfo for the getconfig exchange).
type XMLCallback func(root *Element) (any, error)

// Classify implements spec.md §4.2: it maps known integer sentinels,
// rejects empty bodies, then tries XML and falls back to the
// challenge-script parser.
//
// result is the integer result of the underlying HTTP-layer call (an
// errno-like sentinel, or a non-negative byte count/status on success, per
// spec.md's carryover of the C source's calling convention at this one
// seam). body is the raw response body, possibly nil on error results.
func Classify(result int, body []byte, xmlCB XMLCallback) (any, error) {
	switch result {
	case ResultInvalidCredentials:
		return nil, ErrInvalidCredentials
	case ResultInvalidClientCert:
		return nil, ErrInvalidClientCert
	}

	if result < 0 {
		return nil, nil
	}

	if len(body) == 0 {
		return nil, ErrEmptyResponse
	}

	root, xmlErr := parseXML(body)
	if xmlErr == nil {
		return classifyXML(root, xmlCB)
	}

	return classifyChallenge(body)
}

func classifyXML(root *Element, xmlCB XMLCallback) (any, error) {
	if root.Name != "response" {
		if xmlCB != nil {
			return xmlCB(root)
		}
		return nil, ErrMalformedResponse
	}

	status, hasStatus := root.Attr("status")
	if !hasStatus || status != "error" {
		if xmlCB != nil {
			return xmlCB(root)
		}
		return nil, ErrMalformedResponse
	}

	errEl := root.Child("error")
	if errEl == nil {
		return nil, ErrMalformedResponse
	}

	return nil, classifyErrorMessage(errEl.Text)
}

func classifyErrorMessage(msg string) error {
	switch msg {
	case "GlobalProtect gateway does not exist", "GlobalProtect portal does not exist":
		return ErrNoSuchGateway
	case "Invalid authentication cookie":
		return ErrAuthCookieInvalid
	default:
		return &ServerError{Message: msg}
	}
}

func classifyChallenge(body []byte) (any, error) {
	parsed, err := parseChallengeScript(body)
	if err != nil {
		return nil, ErrMalformedResponse
	}

	switch parsed.Status {
	case ChallengeStatusChallenge:
		return nil, &ChallengeRequired{Prompt: parsed.Prompt, InputStr: parsed.InputStr}
	case ChallengeStatusError:
		return nil, &ServerError{Message: parsed.Prompt}
	default:
		return nil, ErrMalformedResponse
	}
}
