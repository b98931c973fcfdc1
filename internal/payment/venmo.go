// Package payment turns settled user totals into payment-request links and
// display strings. It only reads settlement output; it never touches bill
// state.
package payment

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/fairshare/fairshare/internal/models"
)

// NoteMaxLength caps the Venmo note, ellipsis included.
const NoteMaxLength = 150

// VenmoLink builds a venmo:// charge deep link for one person's settled
// total. The note lists their items and is truncated and URL-encoded.
func VenmoLink(user *models.UserTotal) string {
	amount := strconv.FormatFloat(user.Total, 'f', 2, 64)

	descriptions := make([]string, len(user.Items))
	for i, item := range user.Items {
		descriptions[i] = item.Description
	}
	note := truncateNote(strings.Join(descriptions, ", "))

	return "venmo://paycharge?txn=charge&amount=" + amount + "&note=" + url.QueryEscape(note)
}

func truncateNote(note string) string {
	runes := []rune(note)
	if len(runes) <= NoteMaxLength {
		return note
	}
	return string(runes[:NoteMaxLength-3]) + "..."
}
