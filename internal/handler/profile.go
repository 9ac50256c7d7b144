package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/Prathap331/GB-Backend/internal/auth"
	"github.com/Prathap331/GB-Backend/internal/domain/profile"
)

type profileResp struct {
	ID               string `json:"id"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Gender           string `json:"gender,omitempty"`
	PhoneNumber      string `json:"phone_number,omitempty"`
	AddressLine1     string `json:"address_line1,omitempty"`
	AddressLine2     string `json:"address_line2,omitempty"`
	City             string `json:"city,omitempty"`
	State            string `json:"state,omitempty"`
	PostalCode       string `json:"postal_code,omitempty"`
	Country          string `json:"country,omitempty"`
	CityPreference   string `json:"city_preference,omitempty"`
	VoluntaryConsent bool   `json:"voluntary_consent"`
	FeeConsent       bool   `json:"fee_consent"`
	AccountStatus    string `json:"account_status"`
}

type updateProfileReq struct {
	FullName         string `json:"full_name" validate:"required,max=200"`
	Gender           string `json:"gender" validate:"omitempty,oneof=male female other"`
	PhoneNumber      string `json:"phone_number" validate:"omitempty,max=20"`
	AddressLine1     string `json:"address_line1" validate:"max=300"`
	AddressLine2     string `json:"address_line2" validate:"max=300"`
	City             string `json:"city" validate:"max=120"`
	State            string `json:"state" validate:"max=120"`
	PostalCode       string `json:"postal_code" validate:"max=20"`
	Country          string `json:"country" validate:"max=120"`
	CityPreference   string `json:"city_preference" validate:"max=120"`
	VoluntaryConsent bool   `json:"voluntary_consent"`
	FeeConsent       bool   `json:"fee_consent"`
}

// getProfile returns the caller's profile, lazily creating the default one on
// first access so the client never sees a 404 for its own profile.
func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	p, err := h.profiles.Get(r.Context(), user.ID)
	if errors.Is(err, profile.ErrNotFound) {
		p = profile.NewDefault(user.ID, user.Email)
		err = h.profiles.Create(r.Context(), p)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResp(p))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req updateProfileReq
	if err := h.decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.profiles.Get(r.Context(), user.ID)
	if errors.Is(err, profile.ErrNotFound) {
		p = profile.NewDefault(user.ID, user.Email)
		if err = h.profiles.Create(r.Context(), p); err != nil {
			writeError(w, r, err)
			return
		}
	} else if err != nil {
		writeError(w, r, err)
		return
	}

	p.FullName = req.FullName
	p.Gender = req.Gender
	p.PhoneNumber = req.PhoneNumber
	p.AddressLine1 = req.AddressLine1
	p.AddressLine2 = req.AddressLine2
	p.City = req.City
	p.State = req.State
	p.PostalCode = req.PostalCode
	p.Country = req.Country
	p.CityPreference = req.CityPreference
	p.VoluntaryConsent = req.VoluntaryConsent
	p.FeeConsent = req.FeeConsent

	if err := h.profiles.Update(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResp(p))
}

func toProfileResp(p *profile.Profile) profileResp {
	return profileResp{
		ID:               p.ID.String(),
		FullName:         p.FullName,
		Email:            p.Email,
		Gender:           p.Gender,
		PhoneNumber:      p.PhoneNumber,
		AddressLine1:     p.AddressLine1,
		AddressLine2:     p.AddressLine2,
		City:             p.City,
		State:            p.State,
		PostalCode:       p.PostalCode,
		Country:          p.Country,
		CityPreference:   p.CityPreference,
		VoluntaryConsent: p.VoluntaryConsent,
		FeeConsent:       p.FeeConsent,
		AccountStatus:    p.AccountStatus,
	}
}
