package models

// Owned carries the customer a record belongs to. Every tenant-scoped model
// embeds it so queries can be filtered on customer_id.
type Owned struct {
	CustomerID uint `gorm:"not null;index" json:"customer_id"`
}

// OwnerID reports the customer the record is stamped with.
func (o Owned) OwnerID() uint { return o.CustomerID }

// AssignOwner stamps the record with the given customer.
func (o *Owned) AssignOwner(customerID uint) { o.CustomerID = customerID }
