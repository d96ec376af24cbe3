package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mtembezi/maktaba/core"
	"github.com/mtembezi/maktaba/core/department"
)

type deptRepository struct {
	db *DB
}

var _ department.Repository = (*deptRepository)(nil) // interface compliance check

func NewDepartmentRepository(db *DB) *deptRepository {
	return &deptRepository{db: db}
}

// nameExists reports whether another department holds this name, ignoring
// case. Callers hold the lock.
func (repo *deptRepository) nameExists(name string, excludedIDs map[string]bool) bool {
	for _, dept := range repo.db.depts {
		if strings.EqualFold(dept.Name, name) && !excludedIDs[dept.ID] {
			return true
		}
	}
	return false
}

func (repo *deptRepository) CheckNameUniqueness(ctx context.Context, name string, excludedDepts ...department.Department) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]bool, len(excludedDepts))
	for _, dept := range excludedDepts {
		excluded[dept.ID] = true
	}
	if repo.nameExists(name, excluded) {
		return department.ErrNameExists
	}
	return nil
}

func (repo *deptRepository) CreateDepartment(ctx context.Context, dept department.Department) (department.Department, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.nameExists(dept.Name, nil) {
		return department.Department{}, department.ErrNameExists
	}

	dept.ID = uuid.New().String()
	repo.db.depts[dept.ID] = &dept
	return dept, nil
}

func (repo *deptRepository) QueryDepartments(ctx context.Context, filter *department.QueryFilter, ordering []core.DBOrdering) ([]department.Department, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	depts := make([]department.Department, 0, len(repo.db.depts))
	for _, dept := range repo.db.depts {
		if matchesDeptFilter(*dept, filter) {
			depts = append(depts, *dept)
		}
	}
	sortDepts(depts, ordering)
	return depts, nil
}

func (repo *deptRepository) GetDepartment(ctx context.Context, filter department.GetFilter) (department.Department, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if dept, ok := repo.db.depts[filter.ID]; ok {
			return *dept, nil
		}
		return department.Department{}, department.ErrNotFound
	}
	if filter.Name != "" {
		for _, dept := range repo.db.depts {
			if strings.EqualFold(dept.Name, filter.Name) {
				return *dept, nil
			}
		}
	}
	return department.Department{}, department.ErrNotFound
}

func (repo *deptRepository) UpdateDepartment(ctx context.Context, dept department.Department) (department.Department, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.depts[dept.ID]; !ok {
		return department.Department{}, department.ErrNotFound
	}
	if repo.nameExists(dept.Name, map[string]bool{dept.ID: true}) {
		return department.Department{}, department.ErrNameExists
	}

	repo.db.depts[dept.ID] = &dept
	return dept, nil
}

func (repo *deptRepository) DeleteDepartmentsByID(ctx context.Context, ids []string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// nothing is deleted when any target is still referenced
	for _, id := range ids {
		for _, usr := range repo.db.users {
			if usr.DepartmentID != nil && *usr.DepartmentID == id {
				return 0, department.ErrInUse
			}
		}
		for _, n := range repo.db.notes {
			if n.DepartmentID == id {
				return 0, department.ErrInUse
			}
		}
	}

	cnt := 0
	for _, id := range ids {
		if _, ok := repo.db.depts[id]; ok {
			delete(repo.db.depts, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *deptRepository) CountDepartments(ctx context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.depts), nil
}

func matchesDeptFilter(dept department.Department, filter *department.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" && !strings.Contains(strings.ToLower(dept.Name), strings.ToLower(filter.Search)) {
		return false
	}
	return matchesRange(dept.CreatedAt, filter.CreatedFrom, filter.CreatedTo)
}

func sortDepts(depts []department.Department, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		return
	}
	sort.SliceStable(depts, func(i, j int) bool {
		for _, ord := range ordering {
			cmp := compareDepts(depts[i], depts[j], ord.Field)
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

func compareDepts(a, b department.Department, field string) int {
	switch field {
	case "name":
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
	return 0
}
