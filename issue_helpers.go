package gosift

// Replacer customizes the issue a rule reports. It is either a Msg, which only
// replaces the message, or an IssueOverride, which replaces any non-empty field.
// Validators return a nil Replacer to signal success.
type Replacer interface {
	resolve(code, message string) Issue
}

// Msg replaces the message of a rule's default issue.
type Msg string

func (m Msg) resolve(code, _ string) Issue {
	return Issue{Code: code, Message: string(m)}
}

// IssueOverride replaces the code, message and/or path of a rule's default
// issue. Zero-valued fields keep the default.
type IssueOverride struct {
	Code    string
	Message string
	Path    Path
}

func (o IssueOverride) resolve(code, message string) Issue {
	it := Issue{Code: code, Message: message}
	if o.Code != "" {
		it.Code = o.Code
	}
	if o.Message != "" {
		it.Message = o.Message
	}
	if len(o.Path) > 0 {
		it.Path = append(Path(nil), o.Path...)
	}
	return it
}

// BuildIssue resolves the final issue for a rule from its default code and
// message and an optional replacer.
func BuildIssue(code, message string, r Replacer) Issue {
	if r == nil {
		return Issue{Code: code, Message: message}
	}
	return r.resolve(code, message)
}

// Template turns a resolved issue back into a Replacer so rule validators can
// report the issue they finalized at construction time.
func Template(it Issue) Replacer {
	return IssueOverride{Code: it.Code, Message: it.Message, Path: it.Path}
}

// FirstReplacer returns the first replacer of an optional variadic list.
func FirstReplacer(rs []Replacer) Replacer {
	if len(rs) == 0 {
		return nil
	}
	return rs[0]
}
