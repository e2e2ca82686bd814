package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/mark3labs/rentr/internal/listing"
)

type createResponse struct {
	ID string `json:"_id"`
}

type uploadResponse struct {
	FileURL string `json:"fileUrl"`
}

// CreateProperty posts the basic-details slice and returns the new
// property id.
func (c *Client) CreateProperty(ctx context.Context, actor listing.Actor, info listing.BasicInfo) (string, error) {
	body, err := StepBody(actor, listing.StepBasicDetails, "", info)
	if err != nil {
		return "", err
	}
	var resp createResponse
	if err := c.doRequest(ctx, actor, http.MethodPost, "/properties/"+listing.StepBasicDetails.Endpoint(), body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New("create property: response has no _id")
	}
	return resp.ID, nil
}

// SaveStep posts the slice of step for an existing property.
func (c *Client) SaveStep(ctx context.Context, actor listing.Actor, step listing.Step, propertyID string, slice any) error {
	if propertyID == "" {
		return errors.New("save step: property id is required")
	}
	body, err := StepBody(actor, step, propertyID, slice)
	if err != nil {
		return err
	}
	return c.doRequest(ctx, actor, http.MethodPost, "/properties/"+step.Endpoint(), body, nil)
}

// UploadPhoto posts one encoded photo and returns its URL.
func (c *Client) UploadPhoto(ctx context.Context, actor listing.Actor, req listing.UploadRequest) (listing.MediaRef, error) {
	body, err := encodeChecked("upload-photos", req)
	if err != nil {
		return "", err
	}
	var resp uploadResponse
	if err := c.doRequest(ctx, actor, http.MethodPost, "/photos/upload-photos", body, &resp); err != nil {
		return "", err
	}
	return listing.MediaRef(resp.FileURL), nil
}

// DeleteProperty removes a listing.
func (c *Client) DeleteProperty(ctx context.Context, actor listing.Actor, propertyID string) error {
	if propertyID == "" {
		return errors.New("delete property: property id is required")
	}
	return c.doRequest(ctx, actor, http.MethodDelete, "/properties/"+url.PathEscape(propertyID), nil, nil)
}

// Ping checks that the backend answers HTTP. Any response below 500 counts
// as reachable.
func (c *Client) Ping(ctx context.Context) error {
	err := c.doRequest(ctx, listing.Actor{}, http.MethodGet, "/", nil, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Code < 500 {
		return nil
	}
	return err
}
