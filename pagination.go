package switchhub

import "strings"

// pagePrompts are the pager banners of the consoles we drive. Each is
// answered with a single space.
var pagePrompts = []string{
	"-- MORE --",
	"--More--",
	"<--- More --->",
	"Press any key to continue",
}

// removePagePrompt drops the first occurrence of the first prompt found in
// buf. Text around it is kept so a pattern can still match across the page
// boundary.
func removePagePrompt(buf string) (string, bool) {
	for _, prompt := range pagePrompts {
		if i := strings.Index(buf, prompt); i >= 0 {
			return buf[:i] + buf[i+len(prompt):], true
		}
	}
	return buf, false
}

// handlePagination answers one pager prompt in buf, if there is one.
func (e *Engine) handlePagination(s Session, buf *string) (bool, error) {
	rest, found := removePagePrompt(*buf)
	if !found {
		return false, nil
	}

	e.status.logRaw("[Handling Pagination] ")
	if err := e.write(s, []byte(" ")); err != nil {
		return false, err
	}
	*buf = rest
	return true, nil
}
