package department

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/auth"
	departmentDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/department"
	organisationDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/organisation"
	userDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/user"
)

func TestDepartment(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Department Module Suite")
}

// mockRepository keeps departments and users in memory. WithTx runs the
// callback on a deep copy and commits only on success, so the tests can
// assert that partial failures leave nothing behind.
type mockRepository struct {
	depts map[uuid.UUID]*departmentDatamodel.Department
	orgs  map[uuid.UUID]*organisationDatamodel.Organisation
	users map[uuid.UUID]*userDatamodel.User

	failSetManager error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		depts: map[uuid.UUID]*departmentDatamodel.Department{},
		orgs:  map[uuid.UUID]*organisationDatamodel.Organisation{},
		users: map[uuid.UUID]*userDatamodel.User{},
	}
}

func (m *mockRepository) clone() *mockRepository {
	c := newMockRepository()
	c.failSetManager = m.failSetManager
	for id, d := range m.depts {
		copied := *d
		c.depts[id] = &copied
	}
	for id, o := range m.orgs {
		copied := *o
		c.orgs[id] = &copied
	}
	for id, u := range m.users {
		copied := *u
		c.users[id] = &copied
	}
	return c
}

func (m *mockRepository) WithTx(fn func(Repository) error) error {
	tx := m.clone()
	if err := fn(tx); err != nil {
		return err
	}
	m.depts = tx.depts
	m.orgs = tx.orgs
	m.users = tx.users
	return nil
}

func (m *mockRepository) Create(dept *departmentDatamodel.Department) error {
	if dept.ID == uuid.Nil {
		dept.ID = uuid.New()
	}
	m.depts[dept.ID] = dept
	return nil
}

func (m *mockRepository) GetByID(id uuid.UUID) (*departmentDatamodel.Department, error) {
	return m.depts[id], nil
}

func (m *mockRepository) FindByNameInOrganisation(orgID uuid.UUID, name string, excludeID *uuid.UUID) (*departmentDatamodel.Department, error) {
	for _, d := range m.depts {
		if d.OrganisationID != orgID {
			continue
		}
		if excludeID != nil && d.ID == *excludeID {
			continue
		}
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return nil, nil
}

func (m *mockRepository) List() ([]*departmentDatamodel.Department, error) {
	out := make([]*departmentDatamodel.Department, 0, len(m.depts))
	for _, d := range m.depts {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockRepository) ListByOrganisation(orgID uuid.UUID) ([]*departmentDatamodel.Department, error) {
	var out []*departmentDatamodel.Department
	for _, d := range m.depts {
		if d.OrganisationID == orgID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockRepository) Update(dept *departmentDatamodel.Department) error {
	m.depts[dept.ID] = dept
	return nil
}

func (m *mockRepository) Delete(id uuid.UUID) error {
	delete(m.depts, id)
	return nil
}

func (m *mockRepository) SetManager(deptID uuid.UUID, managerID *uuid.UUID) error {
	if m.failSetManager != nil {
		return m.failSetManager
	}
	d, ok := m.depts[deptID]
	if !ok {
		return errors.New("department not found")
	}
	d.ManagerID = managerID
	return nil
}

func (m *mockRepository) GetOrganisation(id uuid.UUID) (*organisationDatamodel.Organisation, error) {
	return m.orgs[id], nil
}

func (m *mockRepository) GetUser(id uuid.UUID) (*userDatamodel.User, error) {
	return m.users[id], nil
}

func (m *mockRepository) SetUserRole(id uuid.UUID, role string) error {
	u, ok := m.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.Role = role
	return nil
}

func (m *mockRepository) SetUserRoleAndDepartment(id uuid.UUID, role string, deptID *uuid.UUID) error {
	u, ok := m.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.Role = role
	u.DepartmentID = deptID
	return nil
}

type mockAudit struct {
	entries []string
}

func (m *mockAudit) Record(_ context.Context, _ *uuid.UUID, action string, _, _ *uuid.UUID) error {
	m.entries = append(m.entries, action)
	return nil
}

var _ = ginkgo.Describe("DepartmentService", func() {
	var (
		service *Service
		repo    *mockRepository
		audit   *mockAudit
		ctx     context.Context

		superadmin auth.Principal
		orgAdmin   auth.Principal
		manager    auth.Principal
		employee   auth.Principal

		acme        *organisationDatamodel.Organisation
		engineering *departmentDatamodel.Department
		worker      *userDatamodel.User
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		repo = newMockRepository()
		audit = &mockAudit{}
		service = NewService(repo, audit, nil)

		acme = &organisationDatamodel.Organisation{ID: uuid.New(), Name: "Acme Corp"}
		repo.orgs[acme.ID] = acme

		engineering = &departmentDatamodel.Department{ID: uuid.New(), Name: "Engineering", OrganisationID: acme.ID}
		repo.depts[engineering.ID] = engineering

		worker = &userDatamodel.User{
			ID:             uuid.New(),
			Email:          "evan@acme.example.com",
			Role:           string(auth.RoleEmployee),
			OrganisationID: &acme.ID,
			DepartmentID:   &engineering.ID,
		}
		repo.users[worker.ID] = worker

		superadmin = auth.Principal{ID: uuid.New(), Role: auth.RoleSuperadmin}
		orgAdmin = auth.Principal{ID: uuid.New(), Role: auth.RoleOrganisationAdmin, OrganisationID: &acme.ID}
		manager = auth.Principal{ID: uuid.New(), Role: auth.RoleDepartmentManager, OrganisationID: &acme.ID, DepartmentID: &engineering.ID}
		employee = auth.Principal{ID: worker.ID, Role: auth.RoleEmployee, OrganisationID: &acme.ID, DepartmentID: &engineering.ID}
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("creates a department as organisation admin", func() {
			dept, err := service.Create(ctx, orgAdmin, CreateDepartmentDTO{Name: "Sales", OrganisationID: acme.ID})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dept.OrganisationID).To(gomega.Equal(acme.ID))
			gomega.Expect(audit.entries).To(gomega.ContainElement("Created department: Sales"))
		})

		ginkgo.It("denies creating in a foreign organisation", func() {
			otherOrg := &organisationDatamodel.Organisation{ID: uuid.New(), Name: "Globex"}
			repo.orgs[otherOrg.ID] = otherOrg

			_, err := service.Create(ctx, orgAdmin, CreateDepartmentDTO{Name: "Sales", OrganisationID: otherOrg.ID})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrForbidden))
		})

		ginkgo.It("404s on a missing organisation", func() {
			_, err := service.Create(ctx, superadmin, CreateDepartmentDTO{Name: "Sales", OrganisationID: uuid.New()})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrOrganisationNotFound))
		})

		ginkgo.It("rejects a duplicate name within the organisation", func() {
			_, err := service.Create(ctx, orgAdmin, CreateDepartmentDTO{Name: "ENGINEERING", OrganisationID: acme.ID})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeDuplicateName))
		})

		ginkgo.It("allows the same name in another organisation", func() {
			otherOrg := &organisationDatamodel.Organisation{ID: uuid.New(), Name: "Globex"}
			repo.orgs[otherOrg.ID] = otherOrg

			_, err := service.Create(ctx, superadmin, CreateDepartmentDTO{Name: "Engineering", OrganisationID: otherOrg.ID})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("rejects an initial manager from a different organisation", func() {
			otherOrg := &organisationDatamodel.Organisation{ID: uuid.New(), Name: "Globex"}
			repo.orgs[otherOrg.ID] = otherOrg
			outsider := &userDatamodel.User{ID: uuid.New(), OrganisationID: &otherOrg.ID, Role: string(auth.RoleEmployee)}
			repo.users[outsider.ID] = outsider

			_, err := service.Create(ctx, superadmin, CreateDepartmentDTO{Name: "Sales", OrganisationID: acme.ID, ManagerID: &outsider.ID})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeOrganisationMismatch))
		})
	})

	ginkgo.Describe("List", func() {
		ginkgo.It("returns the actor's own department for managers", func() {
			other := &departmentDatamodel.Department{ID: uuid.New(), Name: "Sales", OrganisationID: acme.ID}
			repo.depts[other.ID] = other

			depts, err := service.List(ctx, manager)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(depts).To(gomega.HaveLen(1))
			gomega.Expect(depts[0].ID).To(gomega.Equal(engineering.ID))
		})

		ginkgo.It("returns the organisation's departments for organisation admins", func() {
			otherOrg := &organisationDatamodel.Organisation{ID: uuid.New(), Name: "Globex"}
			repo.orgs[otherOrg.ID] = otherOrg
			foreign := &departmentDatamodel.Department{ID: uuid.New(), Name: "Sales", OrganisationID: otherOrg.ID}
			repo.depts[foreign.ID] = foreign

			depts, err := service.List(ctx, orgAdmin)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(depts).To(gomega.HaveLen(1))
			gomega.Expect(depts[0].ID).To(gomega.Equal(engineering.ID))
		})
	})

	ginkgo.Describe("Get", func() {
		ginkgo.It("lets an employee view their own department", func() {
			dept, err := service.Get(ctx, employee, engineering.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dept.ID).To(gomega.Equal(engineering.ID))
		})

		ginkgo.It("denies an employee on another department", func() {
			other := &departmentDatamodel.Department{ID: uuid.New(), Name: "Sales", OrganisationID: acme.ID}
			repo.depts[other.ID] = other

			_, err := service.Get(ctx, employee, other.ID)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrForbidden))
		})
	})

	ginkgo.Describe("AssignManager", func() {
		ginkgo.It("sets role, membership and manager reference together", func() {
			dept, err := service.AssignManager(ctx, orgAdmin, engineering.ID, worker.ID)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dept.ManagerID).To(gomega.Equal(&worker.ID))
			gomega.Expect(repo.users[worker.ID].Role).To(gomega.Equal(string(auth.RoleDepartmentManager)))
			gomega.Expect(repo.users[worker.ID].DepartmentID).To(gomega.Equal(&engineering.ID))
			gomega.Expect(repo.depts[engineering.ID].ManagerID).To(gomega.Equal(&worker.ID))
		})

		ginkgo.It("leaves nothing behind when the second write fails", func() {
			repo.failSetManager = errors.New("write failed")

			_, err := service.AssignManager(ctx, orgAdmin, engineering.ID, worker.ID)

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(repo.users[worker.ID].Role).To(gomega.Equal(string(auth.RoleEmployee)))
			gomega.Expect(repo.depts[engineering.ID].ManagerID).To(gomega.BeNil())
		})

		ginkgo.It("rejects a user from another organisation", func() {
			otherOrg := &organisationDatamodel.Organisation{ID: uuid.New(), Name: "Globex"}
			repo.orgs[otherOrg.ID] = otherOrg
			outsider := &userDatamodel.User{ID: uuid.New(), OrganisationID: &otherOrg.ID, Role: string(auth.RoleEmployee)}
			repo.users[outsider.ID] = outsider

			_, err := service.AssignManager(ctx, superadmin, engineering.ID, outsider.ID)

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeOrganisationMismatch))
		})

		ginkgo.It("denies department managers", func() {
			_, err := service.AssignManager(ctx, manager, engineering.ID, worker.ID)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrForbidden))
		})
	})

	ginkgo.Describe("RemoveManager", func() {
		ginkgo.BeforeEach(func() {
			_, err := service.AssignManager(ctx, orgAdmin, engineering.ID, worker.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("demotes the manager and clears the reference atomically", func() {
			dept, err := service.RemoveManager(ctx, orgAdmin, engineering.ID)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dept.ManagerID).To(gomega.BeNil())
			gomega.Expect(repo.users[worker.ID].Role).To(gomega.Equal(string(auth.RoleEmployee)))
			gomega.Expect(repo.depts[engineering.ID].ManagerID).To(gomega.BeNil())
		})

		ginkgo.It("keeps the demotion and the cleared reference together on failure", func() {
			repo.failSetManager = errors.New("write failed")

			_, err := service.RemoveManager(ctx, orgAdmin, engineering.ID)

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(repo.users[worker.ID].Role).To(gomega.Equal(string(auth.RoleDepartmentManager)))
			gomega.Expect(repo.depts[engineering.ID].ManagerID).ToNot(gomega.BeNil())
		})

		ginkgo.It("is a no-op when no manager is set", func() {
			_, err := service.RemoveManager(ctx, orgAdmin, engineering.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			dept, err := service.RemoveManager(ctx, orgAdmin, engineering.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dept.ManagerID).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("deletes as organisation admin", func() {
			gomega.Expect(service.Delete(ctx, orgAdmin, engineering.ID)).To(gomega.Succeed())
			gomega.Expect(repo.depts).ToNot(gomega.HaveKey(engineering.ID))
		})

		ginkgo.It("denies employees", func() {
			err := service.Delete(ctx, employee, engineering.ID)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrForbidden))
		})
	})
})
