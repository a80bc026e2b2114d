package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDuplicateKey is returned by stores when a unique index rejects a write.
var ErrDuplicateKey = errors.New("duplicate key")

type Role string

const (
	RoleSeeker Role = "BOOKSEEKER"
	RoleSeller Role = "BOOKSELLER"
	RoleAdmin  Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSeeker, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Role      Role               `json:"role" bson:"role"`
	Address   *Address           `json:"address,omitempty" bson:"address,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type OwnerStatus string

const (
	OwnerNotApproved OwnerStatus = "Not Approved"
	OwnerApproved    OwnerStatus = "Approved"
	OwnerRejected    OwnerStatus = "Rejected"
)

func (s OwnerStatus) Valid() bool {
	switch s {
	case OwnerNotApproved, OwnerApproved, OwnerRejected:
		return true
	}
	return false
}

// Owner is the bookshop profile of a BOOKSELLER user.
type Owner struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"user" bson:"user"`
	FullName      string             `json:"fullName" bson:"fullName"`
	Address       string             `json:"address" bson:"address"`
	MobileNo      string             `json:"mobileNo" bson:"mobileNo"`
	BookShopName  string             `json:"bookShopName" bson:"bookShopName"`
	District      string             `json:"district" bson:"district"`
	City          string             `json:"city" bson:"city"`
	NIC           string             `json:"nic" bson:"nic"`
	NICFile       string             `json:"nicFile" bson:"nicFile"`
	BookshopImage string             `json:"bookshopImage" bson:"bookshopImage"`
	Status        OwnerStatus        `json:"status" bson:"status"`
}

// OwnerUpdate carries the fields of a partial owner update; nil means unchanged.
type OwnerUpdate struct {
	FullName     *string
	Address      *string
	MobileNo     *string
	BookShopName *string
	District     *string
	City         *string
	NIC          *string
	NICFile      *string
	Status       *OwnerStatus
}

// Apply copies the set fields onto o.
func (u OwnerUpdate) Apply(o *Owner) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&o.FullName, u.FullName)
	set(&o.Address, u.Address)
	set(&o.MobileNo, u.MobileNo)
	set(&o.BookShopName, u.BookShopName)
	set(&o.District, u.District)
	set(&o.City, u.City)
	set(&o.NIC, u.NIC)
	set(&o.NICFile, u.NICFile)
	if u.Status != nil {
		o.Status = *u.Status
	}
}
