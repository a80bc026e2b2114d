package models

// Address is the delivery address snapshot kept on users, carts and orders.
type Address struct {
	Name     string `json:"name" bson:"name"`
	MobileNo string `json:"mobileNo" bson:"mobileNo"`
	Street   string `json:"street" bson:"street"`
	City     string `json:"city" bson:"city"`
	District string `json:"district" bson:"district"`
	Province string `json:"province" bson:"province"`
}

// IsZero reports whether no field of the address is set.
func (a Address) IsZero() bool {
	return a == Address{}
}
