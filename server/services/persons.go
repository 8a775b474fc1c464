package services

import (
	"sort"
	"strings"

	"github.com/go-playground/validator"
	"github.com/zivilschutz/zsadmin/server/apperr"
	"github.com/zivilschutz/zsadmin/server/cache"
	"github.com/zivilschutz/zsadmin/server/models"
)

type PersonFilter struct {
	Query  string
	Status string

	// Platoon filters by Zug when not nil.
	Platoon *int
}

type PersonService struct {
	repo     models.Repository[models.Person]
	cache    *cache.Collection[models.Person]
	validate *validator.Validate
}

func newPersonService(deps Deps) *PersonService {
	repo := models.Repository[models.Person]{}
	return &PersonService{
		repo:     repo,
		cache:    cache.NewCollection(repo.All, func(p models.Person) uint { return p.ID }),
		validate: deps.Validate,
	}
}

// List returns the persons matching the filter, sorted by last and first name.
func (s *PersonService) List(filter PersonFilter) ([]models.Person, error) {
	persons, err := s.cache.Find(func(p models.Person) bool {
		if filter.Status != "" && p.Status != filter.Status {
			return false
		}
		return filter.Platoon == nil || p.Platoon == *filter.Platoon
	})
	if err != nil {
		return nil, err
	}

	persons = cache.Filter(persons, filter.Query)
	sortPersons(persons)

	return persons, nil
}

func (s *PersonService) Get(id uint) (*models.Person, error) {
	person, ok, err := s.cache.Get(id)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, apperr.New(apperr.ErrPersonNotFound)
	}
	return &person, nil
}

func (s *PersonService) Create(person *models.Person, editor string) error {
	person.ID = 0
	person.UpdatedBy = editor
	if person.Status == "" {
		person.Status = models.NEW_PERSON
	}

	err := validateRecord(s.validate, person)
	if err != nil {
		return err
	}

	err = s.repo.Add(person)
	if err != nil {
		return err
	}

	s.cache.Put(*person)
	return nil
}

func (s *PersonService) Update(id uint, data map[string]interface{}, editor string) (*models.Person, error) {
	person, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates, err := applyPatch(s.validate, person, data, models.PersonColumns)
	if err != nil {
		return nil, err
	}
	updates["updated_by"] = editor

	return s.save(id, updates)
}

// SetPhoto points the person's photo at an uploaded object.
func (s *PersonService) SetPhoto(id uint, object, editor string) error {
	_, err := s.save(id, map[string]interface{}{"photo_object": object, "updated_by": editor})
	return err
}

// Delete removes only the person; attendance, contact and file records stay.
func (s *PersonService) Delete(id uint) error {
	err := s.repo.Delete(id)
	if err != nil {
		return apperr.NotFoundAs(err, apperr.ErrPersonNotFound)
	}

	s.cache.Remove(id)
	return nil
}

func (s *PersonService) Exists(id uint) error {
	_, err := s.Get(id)
	return err
}

func (s *PersonService) save(id uint, updates map[string]interface{}) (*models.Person, error) {
	err := s.repo.Update(id, updates)
	if err != nil {
		return nil, apperr.NotFoundAs(err, apperr.ErrPersonNotFound)
	}

	person, err := s.repo.ByID(id)
	if err != nil {
		return nil, apperr.NotFoundAs(err, apperr.ErrPersonNotFound)
	}

	s.cache.Put(*person)
	return person, nil
}

func sortPersons(persons []models.Person) {
	sort.SliceStable(persons, func(i, j int) bool {
		a, b := persons[i], persons[j]
		if !strings.EqualFold(a.LastName, b.LastName) {
			return strings.ToLower(a.LastName) < strings.ToLower(b.LastName)
		}
		return strings.ToLower(a.FirstName) < strings.ToLower(b.FirstName)
	})
}
