package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookmarket/filestore"
	"bookmarket/models"
	"bookmarket/utils"
)

const coverFolder = "covers"

type CatalogService struct {
	books  BookStore
	owners OwnerStore
	files  FileStore
	now    Clock
}

func NewCatalogService(books BookStore, owners OwnerStore, files FileStore, now Clock) *CatalogService {
	if now == nil {
		now = time.Now
	}
	return &CatalogService{books: books, owners: owners, files: files, now: now}
}

// BookInput holds the multipart form fields of a book. Price and Stock are
// kept as the raw strings the client sent.
type BookInput struct {
	Title    string
	Author   string
	Category string
	ISBN     string
	Price    string
	Stock    string
}

// BookUpdate is a partial update; nil fields are left alone.
type BookUpdate struct {
	Title    *string
	Author   *string
	Category *string
	ISBN     *string
	Price    *string
	Stock    *string
}

func (s *CatalogService) CreateBook(ctx context.Context, ownerHex string, in BookInput, cover *filestore.Upload) (*models.Book, error) {
	ownerID, err := ParseID(ownerHex)
	if err != nil {
		return nil, err
	}
	if cover == nil {
		return nil, ErrCoverRequired
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Category = strings.TrimSpace(in.Category)
	in.ISBN = strings.TrimSpace(in.ISBN)
	if in.Title == "" || in.Author == "" || in.Category == "" || in.ISBN == "" {
		return nil, ErrMissingFields
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	owner, err := s.owners.FindOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrOwnerNotFound
	}

	coverRef, err := s.files.Save(ctx, *cover, coverFolder)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	b := &models.Book{
		OwnerID:    ownerID,
		Title:      in.Title,
		Author:     in.Author,
		Category:   in.Category,
		ISBN:       in.ISBN,
		Price:      utils.ParseFloat(in.Price, 0),
		Stock:      utils.ParseInt(in.Stock, 0),
		CoverImage: coverRef,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.books.InsertBook(ctx, b); err != nil {
		s.removeFile(ctx, coverRef)
		return nil, err
	}
	return b, nil
}

// UpdateBook applies the supplied fields. A new cover replaces the stored one
// and the previous file is removed best effort.
func (s *CatalogService) UpdateBook(ctx context.Context, idHex string, u BookUpdate, cover *filestore.Upload) (*models.Book, error) {
	id, err := ParseID(idHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	b, err := s.books.FindBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookNotFound
	}

	setTrimmed(&b.Title, u.Title)
	setTrimmed(&b.Author, u.Author)
	setTrimmed(&b.Category, u.Category)
	setTrimmed(&b.ISBN, u.ISBN)
	if u.Price != nil {
		b.Price = utils.ParseFloat(*u.Price, b.Price)
	}
	if u.Stock != nil {
		b.Stock = utils.ParseInt(*u.Stock, b.Stock)
	}

	oldCover, newCover := "", ""
	if cover != nil {
		ref, err := s.files.Save(ctx, *cover, coverFolder)
		if err != nil {
			return nil, err
		}
		oldCover, newCover, b.CoverImage = b.CoverImage, ref, ref
	}
	b.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	ok, err := s.books.ReplaceBook(ctx, b)
	if err == nil && !ok {
		err = ErrBookNotFound
	}
	if err != nil {
		s.removeFile(ctx, newCover)
		return nil, err
	}
	s.removeFile(ctx, oldCover)
	return b, nil
}

// DeleteBook removes the cover best effort, then the record.
func (s *CatalogService) DeleteBook(ctx context.Context, idHex string) error {
	id, err := ParseID(idHex)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	b, err := s.books.FindBook(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrBookNotFound
	}
	s.removeFile(ctx, b.CoverImage)

	ok, err := s.books.DeleteBook(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBookNotFound
	}
	return nil
}

// GetBook returns the book with the shop name and location of its owner.
func (s *CatalogService) GetBook(ctx context.Context, idHex string) (*models.BookDetail, error) {
	id, err := ParseID(idHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	b, err := s.books.FindBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookNotFound
	}

	detail := &models.BookDetail{Book: *b, OwnerRef: b.OwnerID}
	owner, err := s.owners.FindOwner(ctx, b.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		detail.Shop = &models.ShopSummary{
			ID:           owner.ID,
			BookShopName: owner.BookShopName,
			City:         owner.City,
			District:     owner.District,
		}
	}
	return detail, nil
}

// ListBySeller returns the owner's books newest first.
func (s *CatalogService) ListBySeller(ctx context.Context, ownerHex string) ([]models.Book, error) {
	ownerID, err := ParseID(ownerHex)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	owner, err := s.owners.FindOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrOwnerNotFound
	}

	books, err := s.books.ListBooksByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

// AuthorizeOwner checks that the owner profile ownerHex belongs to the user
// userHex.
func (s *CatalogService) AuthorizeOwner(ctx context.Context, ownerHex, userHex string) error {
	ownerID, err := ParseID(ownerHex)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.authorize(ctx, ownerID, userHex)
}

// AuthorizeBook checks that the book bookHex is listed by a shop of userHex.
func (s *CatalogService) AuthorizeBook(ctx context.Context, bookHex, userHex string) error {
	bookID, err := ParseID(bookHex)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	b, err := s.books.FindBook(ctx, bookID)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrBookNotFound
	}
	return s.authorize(ctx, b.OwnerID, userHex)
}

func (s *CatalogService) authorize(ctx context.Context, ownerID primitive.ObjectID, userHex string) error {
	owner, err := s.owners.FindOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if owner == nil {
		return ErrOwnerNotFound
	}
	if owner.UserID.Hex() != userHex {
		return ErrNotShopOwner
	}
	return nil
}

func (s *CatalogService) removeFile(ctx context.Context, ref string) {
	removeBestEffort(ctx, s.files, ref)
}

func setTrimmed(dst *string, v *string) {
	if v == nil {
		return
	}
	if t := strings.TrimSpace(*v); t != "" {
		*dst = t
	}
}
