package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/koustreak/mdbread/internal/errs"
	"modernc.org/sqlite"
)

// Primary SQLite result codes.
// Full list: https://www.sqlite.org/rescode.html
const (
	codeError    = 1
	codePerm     = 3
	codeBusy     = 5
	codeLocked   = 6
	codeReadOnly = 8
	codeCantOpen = 14
	codeAuth     = 23
	codeNotADB   = 26
)

// mapError translates modernc.org/sqlite errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return errs.Wrap(classifyCode(sqliteErr.Code(), sqliteErr.Error()), msg, err)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyCode maps a (possibly extended) result code to ErrKind.
// SQLITE_ERROR is generic, so the message decides between kinds.
func classifyCode(code int, text string) errs.ErrKind {
	switch code & 0xff {
	case codeBusy, codeLocked:
		return errs.ErrKindTimeout
	case codePerm, codeAuth, codeReadOnly:
		return errs.ErrKindPermissionDenied
	case codeCantOpen, codeNotADB:
		return errs.ErrKindConnectionFailed
	case codeError:
		switch {
		case strings.Contains(text, "no such table"):
			return errs.ErrKindNotFound
		case strings.Contains(text, "already exists"):
			return errs.ErrKindInvalidInput
		}
	}
	return errs.ErrKindQueryFailed
}
