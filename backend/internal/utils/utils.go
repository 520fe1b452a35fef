package utils

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	internal_errors "github.com/itchan-dev/forum/shared/errors"
)

const (
	TitleMinLength = 5
	TitleMaxLength = 90
)

type ThreadTitleValidator struct{}

func (e *ThreadTitleValidator) Title(title string) error {
	title = strings.TrimSpace(title)
	length := utf8.RuneCountInString(title)
	if length == 0 {
		return internal_errors.BadRequest("You have to enter thread title.")
	}
	if length < TitleMinLength {
		return internal_errors.BadRequest(fmt.Sprintf("Thread title should be at least %d characters long (it has %d).", TitleMinLength, length))
	}
	if length > TitleMaxLength {
		return internal_errors.BadRequest(fmt.Sprintf("Thread title cannot be longer than %d characters (it has %d).", TitleMaxLength, length))
	}
	if Slugify(title) == "" {
		return internal_errors.BadRequest("Thread title should contain alpha-numeric characters.")
	}
	return nil
}

// Slugify lowercases letters and digits and joins everything else into single dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
