package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/timex"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// getSimpleText and getPassword are indirections swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// GetSimpleText prints a prompt to w and reads a single line of input from
// reader. The trailing newline is trimmed. If EOF occurs after some input
// was read, the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword reads a password from the terminal without echo.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func (a *App) ask(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

// askTime reads a timestamp. Empty input yields nil, "now" the current
// time, "HH:MM" today at that time; anything else must match timex.Layout.
func (a *App) askTime(prompt string) (*string, error) {
	s, err := a.ask(prompt + " (YYYY-MM-DD HH:MM:SS, HH:MM, now, empty to skip)")
	if err != nil {
		return nil, err
	}
	return parseTimeInput(s, a.clock.Now())
}

func parseTimeInput(s string, now time.Time) (*string, error) {
	switch s = strings.TrimSpace(s); {
	case s == "":
		return nil, nil
	case strings.EqualFold(s, "now"):
		v := timex.Stamp(now)
		return &v, nil
	}

	if hm, err := time.ParseInLocation("15:04", s, now.Location()); err == nil {
		t := time.Date(now.Year(), now.Month(), now.Day(), hm.Hour(), hm.Minute(), 0, 0, now.Location())
		v := timex.Stamp(t)
		return &v, nil
	}

	t, err := timex.ParseStamp(s)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q", s)
	}
	v := timex.Stamp(t)
	return &v, nil
}

func (a *App) askDecimal(prompt string) (decimal.Decimal, error) {
	s, err := a.ask(prompt)
	if err != nil || s == "" {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	return d, nil
}

func (a *App) askInt(prompt string) (int, error) {
	s, err := a.ask(prompt)
	if err != nil || s == "" {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
