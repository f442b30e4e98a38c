package postgres_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	internal "github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/company"
	companyPostgres "github.com/frahmantamala/company-management/internal/company/postgres"
	branchDatamodel "github.com/frahmantamala/company-management/internal/core/datamodel/branch"
	companyDatamodel "github.com/frahmantamala/company-management/internal/core/datamodel/company"
)

func TestCompanyRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Company Repository Suite")
}

var _ = Describe("Repository", func() {
	var (
		db   *gorm.DB
		repo *companyPostgres.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared&_foreign_keys=on"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&companyDatamodel.Company{}, &branchDatamodel.Branch{})).To(Succeed())

		repo = companyPostgres.NewRepository(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		Expect(db.Exec("DELETE FROM branches").Error).To(Succeed())
		Expect(db.Exec("DELETE FROM companies").Error).To(Succeed())
	})

	newCompany := func(name string, ownerID int64) *company.Company {
		return company.NewCompany(ownerID, company.CreateCompanyDTO{
			Name:        name,
			Description: "test company",
		})
	}

	Describe("Create", func() {
		It("persists a company and fills in the generated id", func() {
			c := newCompany("Acme Corp", 1)
			Expect(repo.Create(ctx, c)).To(Succeed())
			Expect(c.ID).NotTo(BeZero())

			stored, err := repo.GetByID(ctx, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Name).To(Equal("Acme Corp"))
			Expect(stored.NormalizedName).To(Equal("acme corp"))
			Expect(stored.Status).To(Equal(company.StatusActive))
		})

		It("rejects a second company whose normalized name collides", func() {
			Expect(repo.Create(ctx, newCompany("Acme Corp", 1))).To(Succeed())

			err := repo.Create(ctx, newCompany("  ACME   corp ", 2))
			Expect(err).To(MatchError(internal.ErrCompanyNameUnavailable))
		})

		It("allows distinct normalized names", func() {
			Expect(repo.Create(ctx, newCompany("Acme Corp", 1))).To(Succeed())
			Expect(repo.Create(ctx, newCompany("Acme Corporation", 1))).To(Succeed())
		})
	})

	Describe("GetByID", func() {
		It("returns not found for a missing id", func() {
			_, err := repo.GetByID(ctx, 999)
			Expect(err).To(MatchError(internal.ErrCompanyNotFound))
		})
	})

	Describe("GetByOwner", func() {
		It("returns only companies belonging to the owner", func() {
			Expect(repo.Create(ctx, newCompany("Mine One", 1))).To(Succeed())
			Expect(repo.Create(ctx, newCompany("Mine Two", 1))).To(Succeed())
			Expect(repo.Create(ctx, newCompany("Theirs", 2))).To(Succeed())

			companies, err := repo.GetByOwner(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(companies).To(HaveLen(2))
			for _, c := range companies {
				Expect(c.OwnerID).To(Equal(int64(1)))
			}
		})

		It("returns an empty slice for an owner without companies", func() {
			companies, err := repo.GetByOwner(ctx, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(companies).To(BeEmpty())
		})
	})

	Describe("CountByOwner", func() {
		It("counts archived companies too", func() {
			c := newCompany("To Archive", 1)
			Expect(repo.Create(ctx, c)).To(Succeed())
			Expect(repo.Create(ctx, newCompany("Still Active", 1))).To(Succeed())

			_, err := repo.Mutate(ctx, c.ID, func(c *company.Company) (bool, error) {
				c.Status = company.StatusArchived
				return true, nil
			})
			Expect(err).NotTo(HaveOccurred())

			count, err := repo.CountByOwner(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))
		})
	})

	Describe("NormalizedNameExists", func() {
		It("reports taken names regardless of who owns them", func() {
			Expect(repo.Create(ctx, newCompany("Taken Name", 7))).To(Succeed())

			exists, err := repo.NormalizedNameExists(ctx, "taken name")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = repo.NormalizedNameExists(ctx, "free name")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("Mutate", func() {
		var existing *company.Company

		BeforeEach(func() {
			existing = newCompany("Mutable Co", 1)
			Expect(repo.Create(ctx, existing)).To(Succeed())
		})

		It("persists changes when fn reports a change", func() {
			updated, err := repo.Mutate(ctx, existing.ID, func(c *company.Company) (bool, error) {
				c.Description = "new description"
				return true, nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Description).To(Equal("new description"))

			stored, err := repo.GetByID(ctx, existing.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Description).To(Equal("new description"))
		})

		It("skips the write when fn reports no change", func() {
			before, err := repo.GetByID(ctx, existing.ID)
			Expect(err).NotTo(HaveOccurred())

			unchanged, err := repo.Mutate(ctx, existing.ID, func(c *company.Company) (bool, error) {
				return false, nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(unchanged.UpdatedAt).To(BeTemporally("==", before.UpdatedAt))
		})

		It("rolls back when fn returns an error", func() {
			_, err := repo.Mutate(ctx, existing.ID, func(c *company.Company) (bool, error) {
				c.Description = "should not persist"
				return true, internal.ErrCompanyAlreadyArchived
			})
			Expect(err).To(MatchError(internal.ErrCompanyAlreadyArchived))

			stored, err := repo.GetByID(ctx, existing.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Description).To(Equal("test company"))
		})

		It("surfaces a name collision when a rename hits an existing name", func() {
			Expect(repo.Create(ctx, newCompany("Occupied", 2))).To(Succeed())

			_, err := repo.Mutate(ctx, existing.ID, func(c *company.Company) (bool, error) {
				c.Name = "Occupied"
				c.NormalizedName = "occupied"
				return true, nil
			})
			Expect(err).To(MatchError(internal.ErrCompanyNameUnavailable))
		})

		It("returns not found for a missing id", func() {
			_, err := repo.Mutate(ctx, 999, func(c *company.Company) (bool, error) {
				return false, nil
			})
			Expect(err).To(MatchError(internal.ErrCompanyNotFound))
		})
	})

	Describe("Remove", func() {
		It("deletes the row after fn approves", func() {
			c := newCompany("Doomed", 1)
			Expect(repo.Create(ctx, c)).To(Succeed())

			Expect(repo.Remove(ctx, c.ID, func(c *company.Company) error {
				return nil
			})).To(Succeed())

			_, err := repo.GetByID(ctx, c.ID)
			Expect(err).To(MatchError(internal.ErrCompanyNotFound))
		})

		It("deletes dependent branches along with the company", func() {
			c := newCompany("With Branches", 1)
			Expect(repo.Create(ctx, c)).To(Succeed())
			other := newCompany("Bystander", 2)
			Expect(repo.Create(ctx, other)).To(Succeed())

			Expect(db.Create(&branchDatamodel.Branch{CompanyID: c.ID, Name: "Main", Active: true}).Error).To(Succeed())
			Expect(db.Create(&branchDatamodel.Branch{CompanyID: c.ID, Name: "Second", Active: false}).Error).To(Succeed())
			Expect(db.Create(&branchDatamodel.Branch{CompanyID: other.ID, Name: "Elsewhere", Active: true}).Error).To(Succeed())

			Expect(repo.Remove(ctx, c.ID, func(c *company.Company) error {
				return nil
			})).To(Succeed())

			_, err := repo.GetByID(ctx, c.ID)
			Expect(err).To(MatchError(internal.ErrCompanyNotFound))

			var orphans int64
			Expect(db.Model(&branchDatamodel.Branch{}).Where("company_id = ?", c.ID).Count(&orphans).Error).To(Succeed())
			Expect(orphans).To(BeZero())

			var remaining int64
			Expect(db.Model(&branchDatamodel.Branch{}).Where("company_id = ?", other.ID).Count(&remaining).Error).To(Succeed())
			Expect(remaining).To(Equal(int64(1)))
		})

		It("keeps the row when fn refuses", func() {
			c := newCompany("Protected", 1)
			Expect(repo.Create(ctx, c)).To(Succeed())

			err := repo.Remove(ctx, c.ID, func(c *company.Company) error {
				return internal.ErrNotOwner
			})
			Expect(err).To(MatchError(internal.ErrNotOwner))

			_, err = repo.GetByID(ctx, c.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns not found for a missing id", func() {
			err := repo.Remove(ctx, 999, func(c *company.Company) error {
				return nil
			})
			Expect(err).To(MatchError(internal.ErrCompanyNotFound))
		})
	})
})
