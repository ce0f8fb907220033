package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Obras-api/internal/application/records"
	"github.com/jhoicas/Obras-api/internal/domain"
)

// queryPayload convierte los parámetros de la query string en un payload.
func queryPayload(c *fiber.Ctx) records.Payload {
	p := records.Payload{}
	for k, v := range c.Queries() {
		p[k] = v
	}
	return p
}

// parsePost extrae acción y payload de un POST. Formatos aceptados, en orden:
//  1. urlencoded/multipart con action y payload (JSON en texto)
//  2. JSON {"action", "payload"} (payload objeto o texto JSON)
//  3. JSON {"action", "data"}
//  4. JSON plano: el propio cuerpo es el payload
//
// La acción también puede venir en la query string.
func parsePost(c *fiber.Ctx) (string, records.Payload, error) {
	action := c.Query("action")
	ct := strings.ToLower(string(c.Request().Header.ContentType()))

	if strings.HasPrefix(ct, fiber.MIMEApplicationForm) || strings.HasPrefix(ct, fiber.MIMEMultipartForm) {
		if a := c.FormValue("action"); a != "" {
			action = a
		}
		if raw := c.FormValue("payload"); raw != "" {
			p, err := decodeObject([]byte(raw))
			if err != nil {
				return action, nil, err
			}
			return action, p, nil
		}
		return action, nil, nil
	}

	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return action, nil, nil
	}
	envelope, err := decodeObject(body)
	if err != nil {
		return action, nil, err
	}
	if a, ok := envelope["action"].(string); ok && a != "" {
		action = a
	}
	switch inner := envelope["payload"].(type) {
	case map[string]any:
		return action, records.Payload(inner), nil
	case string:
		p, err := decodeObject([]byte(inner))
		if err != nil {
			return action, nil, err
		}
		return action, p, nil
	}
	if data, ok := envelope["data"].(map[string]any); ok {
		return action, records.Payload(data), nil
	}
	delete(envelope, "action")
	return action, envelope, nil
}

func decodeObject(raw []byte) (records.Payload, error) {
	var p records.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: el cuerpo no es un objeto JSON", domain.ErrInvalidInput)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: payload vacío", domain.ErrInvalidInput)
	}
	return p, nil
}
