package services

import (
	"sort"

	"github.com/go-playground/validator"
	"github.com/zivilschutz/zsadmin/server/apperr"
	"github.com/zivilschutz/zsadmin/server/cache"
	"github.com/zivilschutz/zsadmin/server/models"
)

type ContactService struct {
	repo     models.Repository[models.EmergencyContact]
	cache    *cache.Collection[models.EmergencyContact]
	validate *validator.Validate
	persons  *PersonService
}

func newContactService(deps Deps, persons *PersonService) *ContactService {
	repo := models.Repository[models.EmergencyContact]{}
	return &ContactService{
		repo:     repo,
		cache:    cache.NewCollection(repo.All, func(c models.EmergencyContact) uint { return c.ID }),
		validate: deps.Validate,
		persons:  persons,
	}
}

// ForPerson lists the person's emergency contacts, first to call first.
func (s *ContactService) ForPerson(personID uint, query string) ([]models.EmergencyContact, error) {
	contacts, err := s.cache.Find(func(c models.EmergencyContact) bool { return c.PersonID == personID })
	if err != nil {
		return nil, err
	}

	contacts = cache.Filter(contacts, query)
	sort.SliceStable(contacts, func(i, j int) bool {
		if contacts[i].Priority != contacts[j].Priority {
			return contacts[i].Priority < contacts[j].Priority
		}
		return contacts[i].ID < contacts[j].ID
	})
	return contacts, nil
}

func (s *ContactService) Get(id uint) (*models.EmergencyContact, error) {
	contact, ok, err := s.cache.Get(id)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, apperr.New(apperr.ErrContactNotFound)
	}
	return &contact, nil
}

func (s *ContactService) Create(personID uint, contact *models.EmergencyContact) error {
	contact.ID = 0
	contact.PersonID = personID
	if contact.Priority == 0 {
		contact.Priority = 1
	}

	err := validateRecord(s.validate, contact)
	if err != nil {
		return err
	}

	err = s.persons.Exists(personID)
	if err != nil {
		return err
	}

	err = s.repo.Add(contact)
	if err != nil {
		return err
	}

	s.cache.Put(*contact)
	return nil
}

func (s *ContactService) Update(id uint, data map[string]interface{}) (*models.EmergencyContact, error) {
	contact, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates, err := applyPatch(s.validate, contact, data, models.EmergencyContactColumns)
	if err != nil {
		return nil, err
	}

	err = s.repo.Update(id, updates)
	if err != nil {
		return nil, apperr.NotFoundAs(err, apperr.ErrContactNotFound)
	}

	contact, err = s.repo.ByID(id)
	if err != nil {
		return nil, apperr.NotFoundAs(err, apperr.ErrContactNotFound)
	}

	s.cache.Put(*contact)
	return contact, nil
}

func (s *ContactService) Delete(id uint) error {
	err := s.repo.Delete(id)
	if err != nil {
		return apperr.NotFoundAs(err, apperr.ErrContactNotFound)
	}

	s.cache.Remove(id)
	return nil
}

func (s *ContactService) Invalidate() {
	s.cache.Invalidate()
}
