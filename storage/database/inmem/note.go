package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mtembezi/maktaba/core"
	"github.com/mtembezi/maktaba/core/note"
)

type noteRepository struct {
	db *DB
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(db *DB) *noteRepository {
	return &noteRepository{db: db}
}

// checkRefs verifies the note's department and uploader references.
// Callers hold the lock.
func (repo *noteRepository) checkRefs(n note.Note) error {
	if _, ok := repo.db.depts[n.DepartmentID]; !ok {
		return note.ErrDepartmentNotFound
	}
	if _, ok := repo.db.users[n.UploaderID]; !ok {
		return note.ErrUploaderNotFound
	}
	return nil
}

func (repo *noteRepository) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if err := repo.checkRefs(n); err != nil {
		return note.Note{}, err
	}

	n.ID = uuid.New().String()
	repo.db.notes[n.ID] = &n
	return n, nil
}

func (repo *noteRepository) QueryNotes(ctx context.Context, filter *note.QueryFilter, ordering []core.DBOrdering) ([]note.Note, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	notes := make([]note.Note, 0, len(repo.db.notes))
	for _, n := range repo.db.notes {
		if matchesNoteFilter(*n, filter) {
			notes = append(notes, *n)
		}
	}
	sortNotes(notes, ordering)
	return notes, nil
}

func (repo *noteRepository) GetNote(ctx context.Context, filter note.GetFilter) (note.Note, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if n, ok := repo.db.notes[filter.ID]; ok {
		return *n, nil
	}
	return note.Note{}, note.ErrNotFound
}

func (repo *noteRepository) UpdateNote(ctx context.Context, n note.Note) (note.Note, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.notes[n.ID]; !ok {
		return note.Note{}, note.ErrNotFound
	}
	if err := repo.checkRefs(n); err != nil {
		return note.Note{}, err
	}

	repo.db.notes[n.ID] = &n
	return n, nil
}

func (repo *noteRepository) DeleteNotesByID(ctx context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cnt := 0
	for _, id := range ids {
		if _, ok := repo.db.notes[id]; ok {
			delete(repo.db.notes, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *noteRepository) CountNotes(ctx context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.notes), nil
}

func matchesNoteFilter(n note.Note, filter *note.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" && !strings.Contains(strings.ToLower(n.Title), strings.ToLower(filter.Search)) {
		return false
	}
	if filter.DepartmentID != "" && n.DepartmentID != filter.DepartmentID {
		return false
	}
	if filter.UploaderID != "" && n.UploaderID != filter.UploaderID {
		return false
	}
	if len(filter.IDs) > 0 {
		found := false
		for _, id := range filter.IDs {
			if n.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return matchesRange(n.CreatedAt, filter.CreatedFrom, filter.CreatedTo)
}

func sortNotes(notes []note.Note, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		return
	}
	sort.SliceStable(notes, func(i, j int) bool {
		for _, ord := range ordering {
			cmp := compareNotes(notes[i], notes[j], ord.Field)
			if cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
}

func compareNotes(a, b note.Note, field string) int {
	switch field {
	case "title":
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
	return 0
}
