package postgres_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authPostgres "github.com/frahmantamala/org-directory/internal/auth/postgres"
	refreshtokenDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/refreshtoken"
	userDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/user"
)

func TestAuthPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Postgres Suite")
}

var _ = Describe("Auth PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo *authPostgres.Repository
		ada  *userDatamodel.User
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&userDatamodel.User{}, &refreshtokenDatamodel.RefreshToken{})
		Expect(err).NotTo(HaveOccurred())

		repo = authPostgres.NewRepository(db)

		ada = &userDatamodel.User{
			FirstName:    "Ada",
			LastName:     "Lovelace",
			Email:        "ada@example.com",
			PasswordHash: "digest",
			Role:         "employee",
		}
		Expect(db.Create(ada).Error).NotTo(HaveOccurred())
	})

	Describe("GetByEmail", func() {
		It("matches case-insensitively", func() {
			u, err := repo.GetByEmail("ADA@Example.Com")
			Expect(err).NotTo(HaveOccurred())
			Expect(u).NotTo(BeNil())
			Expect(u.ID).To(Equal(ada.ID))
		})

		It("returns nil without error when absent", func() {
			u, err := repo.GetByEmail("ghost@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(u).To(BeNil())
		})
	})

	Describe("UpdateRole", func() {
		It("persists the new role", func() {
			Expect(repo.UpdateRole(ada.ID, "organisation_admin")).To(Succeed())

			u, err := repo.GetByID(ada.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal("organisation_admin"))
		})
	})

	Describe("Rotate", func() {
		var rec *refreshtokenDatamodel.RefreshToken

		BeforeEach(func() {
			rec = &refreshtokenDatamodel.RefreshToken{
				Token:     "old-token",
				UserID:    ada.ID,
				ExpiresAt: time.Now().Add(time.Hour),
			}
			Expect(repo.Create(rec)).To(Succeed())
		})

		It("replaces the old row with the new one", func() {
			next := &refreshtokenDatamodel.RefreshToken{
				Token:     "new-token",
				UserID:    ada.ID,
				ExpiresAt: time.Now().Add(time.Hour),
			}
			Expect(repo.Rotate("old-token", next)).To(Succeed())

			old, err := repo.GetByToken("old-token")
			Expect(err).NotTo(HaveOccurred())
			Expect(old).To(BeNil())

			fresh, err := repo.GetByToken("new-token")
			Expect(err).NotTo(HaveOccurred())
			Expect(fresh).NotTo(BeNil())
		})

		It("fails when the old token was already consumed", func() {
			next := &refreshtokenDatamodel.RefreshToken{
				Token:     "new-token",
				UserID:    ada.ID,
				ExpiresAt: time.Now().Add(time.Hour),
			}
			Expect(repo.Rotate("old-token", next)).To(Succeed())

			again := &refreshtokenDatamodel.RefreshToken{
				Token:     "another-token",
				UserID:    ada.ID,
				ExpiresAt: time.Now().Add(time.Hour),
			}
			err := repo.Rotate("old-token", again)
			Expect(err).To(MatchError(gorm.ErrRecordNotFound))

			missing, err2 := repo.GetByToken("another-token")
			Expect(err2).NotTo(HaveOccurred())
			Expect(missing).To(BeNil())
		})
	})

	Describe("DeleteByToken", func() {
		It("is idempotent", func() {
			rec := &refreshtokenDatamodel.RefreshToken{
				Token:     "tok",
				UserID:    ada.ID,
				ExpiresAt: time.Now().Add(time.Hour),
			}
			Expect(repo.Create(rec)).To(Succeed())

			Expect(repo.DeleteByToken("tok")).To(Succeed())
			Expect(repo.DeleteByToken("tok")).To(Succeed())
			Expect(repo.DeleteByToken("never-existed")).To(Succeed())
		})
	})

	Describe("Create", func() {
		It("assigns an id", func() {
			rec := &refreshtokenDatamodel.RefreshToken{
				Token:     "tok2",
				UserID:    ada.ID,
				ExpiresAt: time.Now().Add(time.Hour),
			}
			Expect(repo.Create(rec)).To(Succeed())
			Expect(rec.ID).NotTo(Equal(uuid.Nil))
		})
	})
})
