package user

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

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

type mockRepository struct {
	users        map[uuid.UUID]*userDatamodel.User
	orgs         map[uuid.UUID]*organisationDatamodel.Organisation
	depts        map[uuid.UUID]*departmentDatamodel.Department
	bootstrapped bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users: map[uuid.UUID]*userDatamodel.User{},
		orgs:  map[uuid.UUID]*organisationDatamodel.Organisation{},
		depts: map[uuid.UUID]*departmentDatamodel.Department{},
	}
}

func (m *mockRepository) WithTx(fn func(Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Create(u *userDatamodel.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockRepository) GetByID(id uuid.UUID) (*userDatamodel.User, error) {
	return m.users[id], nil
}

func (m *mockRepository) GetByEmail(email string, excludeID *uuid.UUID) (*userDatamodel.User, error) {
	for _, u := range m.users {
		if excludeID != nil && u.ID == *excludeID {
			continue
		}
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockRepository) List() ([]*userDatamodel.User, error) {
	out := make([]*userDatamodel.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockRepository) ListByOrganisation(orgID uuid.UUID) ([]*userDatamodel.User, error) {
	var out []*userDatamodel.User
	for _, u := range m.users {
		if u.OrganisationID != nil && *u.OrganisationID == orgID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockRepository) ListByDepartment(deptID uuid.UUID) ([]*userDatamodel.User, error) {
	var out []*userDatamodel.User
	for _, u := range m.users {
		if u.DepartmentID != nil && *u.DepartmentID == deptID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockRepository) Update(u *userDatamodel.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockRepository) Delete(id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

func (m *mockRepository) BootstrapCompleted() (bool, error) {
	return m.bootstrapped, nil
}

func (m *mockRepository) MarkBootstrapCompleted() error {
	if m.bootstrapped {
		return errors.New("bootstrap marker already present")
	}
	m.bootstrapped = true
	return nil
}

func (m *mockRepository) GetOrganisation(id uuid.UUID) (*organisationDatamodel.Organisation, error) {
	return m.orgs[id], nil
}

func (m *mockRepository) GetDepartment(id uuid.UUID) (*departmentDatamodel.Department, error) {
	return m.depts[id], nil
}

type mockAudit struct {
	entries []string
}

func (m *mockAudit) Record(_ context.Context, _ *uuid.UUID, action string, _, _ *uuid.UUID) error {
	m.entries = append(m.entries, action)
	return nil
}

var _ = ginkgo.Describe("UserService", func() {
	var (
		service *Service
		repo    *mockRepository
		audit   *mockAudit
		ctx     context.Context

		superadmin auth.Principal
		orgAdmin   auth.Principal
		employee   auth.Principal

		acme        *organisationDatamodel.Organisation
		engineering *departmentDatamodel.Department
		worker      *userDatamodel.User
	)

	const bcryptCost = 10

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		repo = newMockRepository()
		audit = &mockAudit{}
		service = NewService(repo, audit, bcryptCost, nil)

		repo.bootstrapped = true

		acme = &organisationDatamodel.Organisation{ID: uuid.New(), Name: "Acme Corp"}
		repo.orgs[acme.ID] = acme
		engineering = &departmentDatamodel.Department{ID: uuid.New(), Name: "Engineering", OrganisationID: acme.ID}
		repo.depts[engineering.ID] = engineering

		rootUser := &userDatamodel.User{ID: uuid.New(), Email: "root@example.com", Role: string(auth.RoleSuperadmin)}
		repo.users[rootUser.ID] = rootUser
		superadmin = auth.Principal{ID: rootUser.ID, Email: rootUser.Email, Role: auth.RoleSuperadmin}

		adminUser := &userDatamodel.User{ID: uuid.New(), Email: "olga@acme.example.com", Role: string(auth.RoleOrganisationAdmin), OrganisationID: &acme.ID}
		repo.users[adminUser.ID] = adminUser
		orgAdmin = auth.Principal{ID: adminUser.ID, Email: adminUser.Email, Role: auth.RoleOrganisationAdmin, OrganisationID: &acme.ID}

		worker = &userDatamodel.User{
			ID:             uuid.New(),
			FirstName:      "Evan",
			LastName:       "Employee",
			Email:          "evan@acme.example.com",
			Role:           string(auth.RoleEmployee),
			OrganisationID: &acme.ID,
			DepartmentID:   &engineering.ID,
		}
		repo.users[worker.ID] = worker
		employee = auth.Principal{ID: worker.ID, Email: worker.Email, Role: auth.RoleEmployee, OrganisationID: &acme.ID, DepartmentID: &engineering.ID}
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("makes the very first account a superadmin regardless of payload", func() {
			repo.users = map[uuid.UUID]*userDatamodel.User{}
			repo.bootstrapped = false

			created, err := service.Create(ctx, nil, CreateUserDTO{
				FirstName: "First",
				LastName:  "User",
				Email:     "first@example.com",
				Password:  "password123",
				Role:      "employee",
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(created.Role).To(gomega.Equal(string(auth.RoleSuperadmin)))
			gomega.Expect(repo.bootstrapped).To(gomega.BeTrue())
		})

		ginkgo.It("rejects anonymous creation once users exist", func() {
			_, err := service.Create(ctx, nil, CreateUserDTO{
				FirstName: "Second",
				LastName:  "User",
				Email:     "second@example.com",
				Password:  "password123",
			})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(401))
		})

		ginkgo.It("lets an organisation admin create an employee in their organisation", func() {
			created, err := service.Create(ctx, &orgAdmin, CreateUserDTO{
				FirstName:      "Nina",
				LastName:       "New",
				Email:          "nina@acme.example.com",
				Password:       "password123",
				OrganisationID: &acme.ID,
				DepartmentID:   &engineering.ID,
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(created.Role).To(gomega.Equal(string(auth.RoleEmployee)))
			gomega.Expect(audit.entries).To(gomega.ContainElement("Created user: nina@acme.example.com"))
		})

		ginkgo.It("forbids an organisation admin minting another organisation admin", func() {
			_, err := service.Create(ctx, &orgAdmin, CreateUserDTO{
				FirstName:      "Peer",
				LastName:       "Admin",
				Email:          "peer@acme.example.com",
				Password:       "password123",
				Role:           "organisation_admin",
				OrganisationID: &acme.ID,
			})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(403))
		})

		ginkgo.It("forbids creating into a foreign organisation", func() {
			otherOrg := &organisationDatamodel.Organisation{ID: uuid.New(), Name: "Globex"}
			repo.orgs[otherOrg.ID] = otherOrg

			_, err := service.Create(ctx, &orgAdmin, CreateUserDTO{
				FirstName:      "Out",
				LastName:       "Sider",
				Email:          "out@globex.example.com",
				Password:       "password123",
				OrganisationID: &otherOrg.ID,
			})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrForbidden))
		})

		ginkgo.It("conflicts on a duplicate email regardless of case", func() {
			_, err := service.Create(ctx, &superadmin, CreateUserDTO{
				FirstName: "Dup",
				LastName:  "Licate",
				Email:     "EVAN@acme.example.com",
				Password:  "password123",
			})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrDuplicateEmail))
		})

		ginkgo.It("rejects an unknown role", func() {
			_, err := service.Create(ctx, &superadmin, CreateUserDTO{
				FirstName: "Bad",
				LastName:  "Role",
				Email:     "bad@example.com",
				Password:  "password123",
				Role:      "admin",
			})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidRole))
		})

		ginkgo.It("rejects a department outside the given organisation", func() {
			otherOrg := &organisationDatamodel.Organisation{ID: uuid.New(), Name: "Globex"}
			repo.orgs[otherOrg.ID] = otherOrg

			_, err := service.Create(ctx, &superadmin, CreateUserDTO{
				FirstName:      "Cross",
				LastName:       "Org",
				Email:          "cross@example.com",
				Password:       "password123",
				OrganisationID: &otherOrg.ID,
				DepartmentID:   &engineering.ID,
			})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeOrganisationMismatch))
		})

		ginkgo.It("rejects a password over 72 bytes", func() {
			_, err := service.Create(ctx, &superadmin, CreateUserDTO{
				FirstName: "Long",
				LastName:  "Pass",
				Email:     "long@example.com",
				Password:  strings.Repeat("a", 73),
			})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodePasswordTooLong))
		})
	})

	ginkgo.Describe("List", func() {
		ginkgo.It("returns only the employee themselves", func() {
			users, err := service.List(ctx, employee)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(users).To(gomega.HaveLen(1))
			gomega.Expect(users[0].ID).To(gomega.Equal(worker.ID))
		})

		ginkgo.It("filters to the admin's organisation", func() {
			users, err := service.List(ctx, orgAdmin)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(users).To(gomega.HaveLen(2))
		})

		ginkgo.It("returns everyone for superadmin", func() {
			users, err := service.List(ctx, superadmin)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(users).To(gomega.HaveLen(3))
		})
	})

	ginkgo.Describe("Get", func() {
		ginkgo.It("lets an employee read their own record", func() {
			u, err := service.Get(ctx, employee, worker.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.ID).To(gomega.Equal(worker.ID))
		})

		ginkgo.It("denies an employee on another record", func() {
			_, err := service.Get(ctx, employee, orgAdmin.ID)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrForbidden))
		})
	})

	ginkgo.Describe("Update", func() {
		ginkgo.It("updates profile fields on the own record", func() {
			name := "Evangeline"
			u, err := service.Update(ctx, employee, worker.ID, UpdateUserDTO{FirstName: &name})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.FirstName).To(gomega.Equal("Evangeline"))
		})

		ginkgo.It("blocks an employee from changing their own role", func() {
			role := "superadmin"
			_, err := service.Update(ctx, employee, worker.ID, UpdateUserDTO{Role: &role})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeRestrictedField))
		})

		ginkgo.It("blocks a superadmin from changing their own placement", func() {
			_, err := service.Update(ctx, superadmin, superadmin.ID, UpdateUserDTO{OrganisationID: &acme.ID})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeRestrictedField))
		})

		ginkgo.It("lets a superadmin move someone else", func() {
			role := "department_manager"
			u, err := service.Update(ctx, superadmin, worker.ID, UpdateUserDTO{Role: &role})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.Role).To(gomega.Equal(string(auth.RoleDepartmentManager)))
		})

		ginkgo.It("forbids an organisation admin assigning superadmin", func() {
			role := "superadmin"
			_, err := service.Update(ctx, orgAdmin, worker.ID, UpdateUserDTO{Role: &role})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(403))
		})

		ginkgo.It("conflicts when changing to an email already in use", func() {
			mail := "olga@acme.example.com"
			_, err := service.Update(ctx, superadmin, worker.ID, UpdateUserDTO{Email: &mail})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrDuplicateEmail))
		})

		ginkgo.It("re-hashes a changed password", func() {
			pw := "new-password-123"
			u, err := service.Update(ctx, employee, worker.ID, UpdateUserDTO{Password: &pw})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.PasswordHash).ToNot(gomega.BeEmpty())
			gomega.Expect(auth.VerifyPassword(u.PasswordHash, pw)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("deletes inside the admin's organisation", func() {
			gomega.Expect(service.Delete(ctx, orgAdmin, worker.ID)).To(gomega.Succeed())
			gomega.Expect(repo.users).ToNot(gomega.HaveKey(worker.ID))
			gomega.Expect(audit.entries).To(gomega.ContainElement("Deleted user: evan@acme.example.com"))
		})

		ginkgo.It("denies employees deleting anyone including themselves", func() {
			err := service.Delete(ctx, employee, worker.ID)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrForbidden))
		})

		ginkgo.It("404s on a missing user", func() {
			err := service.Delete(ctx, superadmin, uuid.New())
			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserNotFound))
		})
	})
})
