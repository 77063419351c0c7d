package customer

import (
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// CustomerGroupConfig describes the customer_groups table.
func CustomerGroupConfig() crud.Config {
	return crud.Config{
		ResourceName:  "Customer Group",
		SortColumns:   persistence.SortColumns("id", "name", "created_at"),
		FilterColumns: persistence.SortColumns("name", "is_default"),
		Dependencies: []crud.Dependency{
			{
				Table:        "customers",
				ForeignKey:   "customer_group_id",
				ResourceName: "customer",
				Message:      "Cannot delete customer group because it has {count} customer(s) assigned.",
			},
			{
				Table:        "accounts",
				ForeignKey:   "customer_group_id",
				ResourceName: "account",
				Message:      "Cannot delete customer group because it has {count} account(s) assigned.",
			},
			{
				Table:        "price_list_assignments",
				ForeignKey:   "customer_group_id",
				ResourceName: "price list assignment",
				Message:      "Cannot delete customer group because it has {count} price list assignment(s).",
			},
		},
	}
}

// CustomerGroupService manages customer groups
type CustomerGroupService struct {
	*crud.Service[models.CustomerGroup]
}

// NewCustomerGroupService creates a CustomerGroupService
func NewCustomerGroupService(db *gorm.DB) *CustomerGroupService {
	return &CustomerGroupService{Service: crud.MustNew[models.CustomerGroup](db, CustomerGroupConfig(), nil)}
}
