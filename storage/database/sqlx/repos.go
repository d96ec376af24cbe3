// Package sqlxrepos implements the domain repositories on Postgres with
// sqlx, queries built with squirrel.
package sqlxrepos

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/mtembezi/maktaba/core"
)

// psql builds queries with Postgres $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Postgres error codes of interest.
const (
	pqUniqueViolation = pq.ErrorCode("23505")
	pqFKViolation     = pq.ErrorCode("23503")
)

// Constraint names from the migrations; violations map back to domain errors.
const (
	userEmailKey     = "user_email_key"
	userDeptFKey     = "user_department_id_fkey"
	deptNameKey      = "department_name_key"
	noteDeptFKey     = "note_department_id_fkey"
	noteUploaderFKey = "note_uploader_id_fkey"
)

// pqErrWithCode unwraps err to a *pq.Error with the given code, if any.
func pqErrWithCode(err error, code pq.ErrorCode) (*pq.Error, bool) {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	if !ok || pqErr.Code != code {
		return nil, false
	}
	return pqErr, true
}

// applyOrdering adds the whitelisted orderings to a select.
func applyOrdering(b sq.SelectBuilder, ordering []core.DBOrdering, allowed map[string]string) sq.SelectBuilder {
	for _, ord := range core.FilterOrderings(ordering, allowed) {
		b = b.OrderBy(ord.String())
	}
	return b
}
