package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/org-directory/internal/auth"
	departmentDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/department"
	organisationDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/organisation"
	userDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"refresh_tokens", "activity_logs", "users", "departments", "organisations", "system_bootstrap"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), cfg.Security.BCryptCost)

		// Seeding the root account counts as the one-time bootstrap, so
		// anonymous user creation stays closed afterwards.
		if err := db.Exec("INSERT INTO system_bootstrap (id) VALUES (1) ON CONFLICT (id) DO NOTHING").Error; err != nil {
			log.Fatalf("failed to record bootstrap: %v", err)
		}

		root := seedUser(db, &userDatamodel.User{
			FirstName:    "Root",
			LastName:     "Admin",
			Age:          40,
			Email:        "root@example.com",
			PasswordHash: string(hash),
			Role:         string(auth.RoleSuperadmin),
		})

		org := seedOrganisation(db, &organisationDatamodel.Organisation{
			Name:           "Acme Corp",
			Address:        "1 Main Street",
			EmployeesCount: 3,
			AdminID:        &root.ID,
		})

		dept := seedDepartment(db, &departmentDatamodel.Department{
			Name:           "Engineering",
			OrganisationID: org.ID,
		})

		orgAdmin := seedUser(db, &userDatamodel.User{
			FirstName:      "Olga",
			LastName:       "Admin",
			Age:            35,
			Email:          "olga@acme.example.com",
			PasswordHash:   string(hash),
			Role:           string(auth.RoleOrganisationAdmin),
			OrganisationID: &org.ID,
		})
		_ = orgAdmin

		manager := seedUser(db, &userDatamodel.User{
			FirstName:      "Maya",
			LastName:       "Manager",
			Age:            33,
			Email:          "maya@acme.example.com",
			PasswordHash:   string(hash),
			Role:           string(auth.RoleDepartmentManager),
			OrganisationID: &org.ID,
			DepartmentID:   &dept.ID,
		})

		if dept.ManagerID == nil {
			if err := db.Model(dept).Update("manager_id", manager.ID).Error; err != nil {
				log.Fatalf("failed to set department manager: %v", err)
			}
		}

		seedUser(db, &userDatamodel.User{
			FirstName:      "Evan",
			LastName:       "Employee",
			Age:            28,
			Email:          "evan@acme.example.com",
			PasswordHash:   string(hash),
			Role:           string(auth.RoleEmployee),
			OrganisationID: &org.ID,
			DepartmentID:   &dept.ID,
		})

		fmt.Println("Seeding complete")
	},
}

func seedUser(db *gorm.DB, u *userDatamodel.User) *userDatamodel.User {
	var existing userDatamodel.User
	err := db.Where("LOWER(email) = LOWER(?)", u.Email).First(&existing).Error
	if err == nil {
		fmt.Println("user already exists:", u.Email)
		return &existing
	}
	if err != gorm.ErrRecordNotFound {
		log.Fatalf("failed to check user %s: %v", u.Email, err)
	}
	if err := db.Create(u).Error; err != nil {
		log.Fatalf("failed to seed user %s: %v", u.Email, err)
	}
	fmt.Println("Seeded user:", u.Email)
	return u
}

func seedOrganisation(db *gorm.DB, org *organisationDatamodel.Organisation) *organisationDatamodel.Organisation {
	var existing organisationDatamodel.Organisation
	err := db.Where("LOWER(name) = LOWER(?)", org.Name).First(&existing).Error
	if err == nil {
		fmt.Println("organisation already exists:", org.Name)
		return &existing
	}
	if err != gorm.ErrRecordNotFound {
		log.Fatalf("failed to check organisation %s: %v", org.Name, err)
	}
	if err := db.Create(org).Error; err != nil {
		log.Fatalf("failed to seed organisation %s: %v", org.Name, err)
	}
	fmt.Println("Seeded organisation:", org.Name)
	return org
}

func seedDepartment(db *gorm.DB, dept *departmentDatamodel.Department) *departmentDatamodel.Department {
	var existing departmentDatamodel.Department
	err := db.Where("organisation_id = ? AND LOWER(name) = LOWER(?)", dept.OrganisationID, dept.Name).First(&existing).Error
	if err == nil {
		fmt.Println("department already exists:", dept.Name)
		return &existing
	}
	if err != gorm.ErrRecordNotFound {
		log.Fatalf("failed to check department %s: %v", dept.Name, err)
	}
	if err := db.Create(dept).Error; err != nil {
		log.Fatalf("failed to seed department %s: %v", dept.Name, err)
	}
	fmt.Println("Seeded department:", dept.Name)
	return dept
}
