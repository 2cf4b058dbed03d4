package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"mime/multipart"
	"net/http"

	"github.com/arcnetwork/arc-processing/util"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token
func (cli *Client) Login(username, password string) (string, error) {
	var response struct {
		Token string `json:"token"`
	}
	err := cli.sendRequest(
		"POST", LoginURL, "", loginRequest{username, password}, &response,
	)
	if err != nil {
		return "", err
	}
	if response.Token == "" {
		return "", APIError("Login failed")
	}
	return response.Token, nil
}

// Logout invalidates given bearer token on backend
func (cli *Client) Logout(token string) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	return cli.sendRequest("POST", LogoutURL, token, nil, nil)
}

// FaceAuth submits a captured camera frame for face verification bound to
// given token. It returns backend's verdict; a missing face_ok field counts
// as a negative result
func (cli *Client) FaceAuth(token string, image []byte) (bool, error) {
	if token == "" {
		return false, ErrNotAuthenticated
	}

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	part, err := writer.CreateFormFile("image", "frame.jpg")
	if err != nil {
		return false, err
	}
	if _, err = part.Write(image); err != nil {
		return false, err
	}
	if err = writer.Close(); err != nil {
		return false, err
	}

	fullURL, err := util.URLJoin(cli.apiBaseURL, FaceAuthURL)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequest("POST", fullURL, &requestBody)
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := cli.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}
	if resp.StatusCode >= 400 {
		return false, fmt.Errorf(
			"Backend replied with code %d to face auth request",
			resp.StatusCode,
		)
	}

	var response struct {
		FaceOk bool `json:"face_ok"`
	}
	if err = json.Unmarshal(body, &response); err != nil {
		return false, err
	}
	return response.FaceOk, nil
}
