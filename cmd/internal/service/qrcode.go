package service

import (
	"strings"
	"unicode"

	"setores/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
	"github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 256
	minQRSize     = 128
	maxQRSize     = 1024
)

// WhatsappQRCode renders a PNG pointing at the wa.me link of the setor's
// whatsapp, or its celular when no whatsapp is set.
func (s *DefaultSetorService) WhatsappQRCode(idOrSlug, size string) ([]byte, apierror.ErrorResponse) {
	st, ok := s.Store.Lookup(idOrSlug)
	if !ok {
		return nil, apierror.NotFoundError
	}

	number := digits(st.Whatsapp)
	if number == "" {
		number = digits(st.Celular)
	}
	if number == "" {
		return nil, apierror.MissingWhatsappError
	}

	px := min(maxQRSize, max(minQRSize, atoiOr(size, defaultQRSize)))
	png, err := qrcode.Encode(WhatsappLink(number), qrcode.Medium, px)
	if err != nil {
		log.Errorf("failed to render qrcode for %s: %v", st.Slug, err)
		return nil, apierror.InternalServerError
	}
	return png, nil
}

func WhatsappLink(number string) string {
	return "https://wa.me/" + digits(number)
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
