package services

import (
	"time"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
)

var baseTime = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

func revisions(ids ...entities.RevisionID) []entities.Revision {
	out := make([]entities.Revision, 0, len(ids))
	for _, id := range ids {
		out = append(out, entities.Revision{
			ID:        id,
			DatasetID: "edr",
			Created:   baseTime.Add(time.Duration(id) * 24 * time.Hour),
			Imported:  true,
		})
	}
	return out
}

func companyRecord(company entities.CompanyID, hash, status, location string, revs ...entities.RevisionID) entities.CompanyRecord {
	return entities.CompanyRecord{
		Hash:      hash,
		CompanyID: company,
		Name:      "ТОВ " + hash,
		Location:  location,
		Status:    status,
		Revisions: revs,
	}
}

func person(company entities.CompanyID, hash string, role entities.Role, names []string, revs ...entities.RevisionID) entities.Person {
	return entities.Person{
		Hash:      hash,
		CompanyID: company,
		Role:      role,
		Names:     names,
		Revisions: revs,
	}
}

const registered = "зареєстровано"
