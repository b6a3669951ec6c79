package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/csirmaz/algebraic-reconciler/internal/algebra"
	"github.com/csirmaz/algebraic-reconciler/internal/session"
)

// LoadSession reads and parses a session file.
//
// The file holds one session in command notation; surrounding whitespace
// is ignored. Returns the parsed session together with the exact text
// that was parsed, which is what the log commands store as the durable
// source of truth.
func LoadSession(path string) (*session.Session, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read session file: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, "", fmt.Errorf("session file %s is empty", path)
	}

	sess, err := session.Parse(text)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return sess, text, nil
}

// errorCode extracts the machine-readable code carried by err: parse
// codes (E2xx) from the session parser, algebra codes (CONFLICT, ...)
// from the reconciler, "ERROR" otherwise.
func errorCode(err error) string {
	var perr *session.ParseError
	if errors.As(err, &perr) {
		return perr.Code
	}
	var aerr *algebra.Error
	if errors.As(err, &aerr) {
		return string(aerr.Code)
	}
	return "ERROR"
}

// reportLoadError prints the load failure through the formatter and
// converts it into a command-level exit error.
func reportLoadError(formatter *OutputFormatter, err error) error {
	_ = formatter.Error(errorCode(err), err.Error(), nil)
	return WrapExitError(ExitCommandError, "invalid session input", err)
}

// selectLabels resolves the --label flags against the session, defaulting
// to every declared sequence in order.
func selectLabels(sess *session.Session, labels []string) ([]string, error) {
	if len(labels) == 0 {
		return sess.Names(), nil
	}
	for _, label := range labels {
		if _, ok := sess.Sequence(label); !ok {
			return nil, fmt.Errorf("unknown sequence %q (session declares %s)",
				label, strings.Join(sess.Names(), ", "))
		}
	}
	return labels, nil
}
