// Package publish uploads finished edits to YouTube through the Data API.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Publisher uploads a rendered video and returns its remote ID.
type Publisher interface {
	Upload(ctx context.Context, req UploadRequest) (string, error)
}

// UploadRequest describes one video upload.
type UploadRequest struct {
	VideoPath   string
	Title       string
	Description string
	Tags        []string
	Privacy     string // private, unlisted, public; defaults to private
}

// YouTubeUploader authenticates with a long-lived OAuth2 refresh token and
// performs resumable uploads.
type YouTubeUploader struct {
	clientID     string
	clientSecret string
	refreshToken string
	logger       *slog.Logger
}

func NewYouTubeUploader(clientID, clientSecret, refreshToken string, logger *slog.Logger) *YouTubeUploader {
	return &YouTubeUploader{
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		logger:       logger,
	}
}

// Configured reports whether upload credentials are present.
func (u *YouTubeUploader) Configured() bool {
	return u.clientID != "" && u.clientSecret != "" && u.refreshToken != ""
}

func (u *YouTubeUploader) Upload(ctx context.Context, req UploadRequest) (string, error) {
	if !u.Configured() {
		return "", fmt.Errorf("youtube credentials are not configured")
	}
	if req.Title == "" {
		return "", fmt.Errorf("video title is required")
	}

	privacy := req.Privacy
	switch privacy {
	case "":
		privacy = "private"
	case "private", "unlisted", "public":
	default:
		return "", fmt.Errorf("unknown privacy status %q", privacy)
	}

	file, err := os.Open(req.VideoPath)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer file.Close()

	oauthCfg := &oauth2.Config{
		ClientID:     u.clientID,
		ClientSecret: u.clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
	client := oauthCfg.Client(ctx, &oauth2.Token{RefreshToken: u.refreshToken})

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", fmt.Errorf("create youtube service: %w", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	u.logger.Info("uploading video to youtube",
		"path", req.VideoPath,
		"title", req.Title,
		"privacy", privacy,
	)

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	resp, err := call.Media(file).Do()
	if err != nil {
		return "", fmt.Errorf("youtube upload failed: %w", err)
	}

	u.logger.Info("youtube upload succeeded", "video_id", resp.Id)
	return resp.Id, nil
}
