package services

import (
	"context"
	"errors"
	"strings"

	"bookmarket/filestore"
	"bookmarket/models"
)

const (
	nicFolder  = "nic"
	shopFolder = "shops"
)

// OwnerService runs the seller approval workflow: sellers register a profile
// that stays Not Approved until an admin changes its status.
type OwnerService struct {
	owners OwnerStore
	users  UserStore
	files  FileStore
}

func NewOwnerService(owners OwnerStore, users UserStore, files FileStore) *OwnerService {
	return &OwnerService{owners: owners, users: users, files: files}
}

type OwnerInput struct {
	UserID       string
	FullName     string
	Address      string
	MobileNo     string
	BookShopName string
	District     string
	City         string
	NIC          string
}

func (s *OwnerService) RegisterOwner(ctx context.Context, in OwnerInput, nicFile, shopImage *filestore.Upload) (*models.Owner, error) {
	if nicFile == nil || shopImage == nil {
		return nil, ErrOwnerFiles
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, validationf("userId is required to link owner to user")
	}
	userID, err := ParseID(in.UserID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	existing, err := s.owners.FindOwnerByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrOwnerExists
	}

	nicRef, err := s.files.Save(ctx, *nicFile, nicFolder)
	if err != nil {
		return nil, err
	}
	shopRef, err := s.files.Save(ctx, *shopImage, shopFolder)
	if err != nil {
		removeBestEffort(ctx, s.files, nicRef)
		return nil, err
	}

	o := &models.Owner{
		UserID:        userID,
		FullName:      strings.TrimSpace(in.FullName),
		Address:       strings.TrimSpace(in.Address),
		MobileNo:      strings.TrimSpace(in.MobileNo),
		BookShopName:  strings.TrimSpace(in.BookShopName),
		District:      strings.TrimSpace(in.District),
		City:          strings.TrimSpace(in.City),
		NIC:           strings.TrimSpace(in.NIC),
		NICFile:       nicRef,
		BookshopImage: shopRef,
		Status:        models.OwnerNotApproved,
	}
	if err := s.owners.InsertOwner(ctx, o); err != nil {
		removeBestEffort(ctx, s.files, nicRef)
		removeBestEffort(ctx, s.files, shopRef)
		if errors.Is(err, models.ErrDuplicateKey) {
			return nil, ErrOwnerExists
		}
		return nil, err
	}
	return o, nil
}

// ListOwners returns every profile; an empty result is not an error.
func (s *OwnerService) ListOwners(ctx context.Context) ([]models.Owner, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	list, err := s.owners.ListOwners(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Owner{}
	}
	return list, nil
}

func (s *OwnerService) GetOwner(ctx context.Context, idHex string) (*models.Owner, error) {
	id, err := ParseID(idHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	o, err := s.owners.FindOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOwnerNotFound
	}
	return o, nil
}

func (s *OwnerService) GetOwnerByUser(ctx context.Context, userHex string) (*models.Owner, error) {
	userID, err := ParseID(userHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	o, err := s.owners.FindOwnerByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOwnerNotFound
	}
	return o, nil
}

// UpdateOwner applies a partial update. A new NIC document replaces the
// stored one; the previous file is removed best effort.
func (s *OwnerService) UpdateOwner(ctx context.Context, idHex string, u models.OwnerUpdate, nicFile *filestore.Upload) (*models.Owner, error) {
	id, err := ParseID(idHex)
	if err != nil {
		return nil, err
	}
	if u.Status != nil && !u.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	current, err := s.owners.FindOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrOwnerNotFound
	}

	if nicFile != nil {
		ref, err := s.files.Save(ctx, *nicFile, nicFolder)
		if err != nil {
			return nil, err
		}
		u.NICFile = &ref
	}

	updated, err := s.owners.UpdateOwner(ctx, id, u)
	if err == nil && updated == nil {
		err = ErrOwnerNotFound
	}
	if err != nil {
		if nicFile != nil {
			removeBestEffort(ctx, s.files, *u.NICFile)
		}
		return nil, err
	}
	if nicFile != nil && current.NICFile != "" && current.NICFile != updated.NICFile {
		removeBestEffort(ctx, s.files, current.NICFile)
	}
	return updated, nil
}

// DeleteOwner removes the profile and then its files. Books of the owner are
// left in place.
func (s *OwnerService) DeleteOwner(ctx context.Context, idHex string) (*models.Owner, error) {
	id, err := ParseID(idHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	o, err := s.owners.DeleteOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOwnerNotFound
	}
	removeBestEffort(ctx, s.files, o.NICFile)
	removeBestEffort(ctx, s.files, o.BookshopImage)
	return o, nil
}
