package handler

import (
	"net/http"
)

type deliveryPartnerResp struct {
	DeliveryPartnerID int64  `json:"delivery_partner_id"`
	PartnerName       string `json:"partner_name"`
	ContactNumber     string `json:"contact_number,omitempty"`
	Status            string `json:"status"`
}

func (h *Handler) listDeliveryPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.partners.ListPartners(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]deliveryPartnerResp, len(partners))
	for i, p := range partners {
		out[i] = deliveryPartnerResp{
			DeliveryPartnerID: p.ID,
			PartnerName:       p.PartnerName,
			ContactNumber:     p.ContactNumber,
			Status:            p.Status,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
