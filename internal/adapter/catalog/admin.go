package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/niksmo/farmstore/internal/core/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges admin credentials for a bearer token through
// POST <api>/admin/login.
func (c *Client) Login(
	ctx context.Context, username, password string,
) (string, error) {
	const op = "Client.Login"

	body, err := json.Marshal(loginRequest{username, password})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.endpoint("admin", "login"), bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	data, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var res loginResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if res.Token == "" {
		return "", fmt.Errorf("%s: %w: empty token", op, ErrUnauthorized)
	}
	return res.Token, nil
}

// CreateProduct posts the product as a multipart form to <api>/products.
// The image is sent as a URL reference.
func (c *Client) CreateProduct(
	ctx context.Context, token string, np domain.NewProduct,
) (domain.Product, error) {
	const op = "Client.CreateProduct"

	body, contentType, err := productForm(np)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.endpoint("products"), body,
	)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	setBearer(req, token)

	data, err := c.do(req)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := NormalizeOne(data, c.idField)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// DeleteProduct sends DELETE <api>/products/{id}.
func (c *Client) DeleteProduct(ctx context.Context, token, productID string) error {
	const op = "Client.DeleteProduct"

	req, err := http.NewRequestWithContext(
		ctx, http.MethodDelete, c.endpoint("products", productID), nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	setBearer(req, token)

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func setBearer(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
}

func productForm(np domain.NewProduct) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"name", np.Name},
		{"description", np.Description},
		{"price", np.Price.String()},
		{"unit", np.Unit},
		{"category", string(np.Category)},
		{"isTopProduct", strconv.FormatBool(np.IsTopProduct)},
		{"image", np.Image},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
