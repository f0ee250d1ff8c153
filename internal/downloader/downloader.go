// Package downloader imports audio from podcast and episode pages. Episode
// pages are read through their Open Graph tags (og:audio, og:title);
// xiaoyuzhou podcast pages are expanded into their episode list.
package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	"go.uber.org/zap"

	apperrors "echoscript/internal/app/errors"
	"echoscript/internal/app/util/files"
	"echoscript/internal/downloader/model"
)

var (
	pidRegexp     = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	episodeRegexp = regexp.MustCompile(`^https?://(?:www\.)?xiaoyuzhoufm\.com/episode/([0-9a-f]{24})`)

	// ErrNoAudio means the page carries no og:audio tag
	ErrNoAudio = apperrors.New("page has no audio")
)

// Episode is one importable recording
type Episode struct {
	PageURL  string
	AudioURL string
	Title    string
	Podcast  string
}

// Audio is a downloaded recording ready for a job
type Audio struct {
	Episode     Episode
	Data        []byte
	ContentType string
}

// Fetcher resolves pages and downloads their audio
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	logger   *zap.Logger
}

// NewFetcher creates a Fetcher. maxBytes bounds every download; zero means
// unbounded.
func NewFetcher(client *http.Client, maxBytes int64, logger *zap.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{client: client, maxBytes: maxBytes, logger: logger.Named("downloader")}
}

// Fetch resolves pageURL and downloads its audio. A URL that already points
// at an audio file is downloaded directly.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Audio, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, apperrors.InvalidFormat("url", "an http(s) URL")
	}

	var ep *Episode
	if isAudioPath(u.Path) {
		ep = &Episode{PageURL: pageURL, AudioURL: pageURL, Title: path.Base(u.Path)}
	} else {
		ep, err = f.ResolveEpisode(ctx, pageURL)
		if err != nil {
			return nil, err
		}
	}

	data, contentType, err := f.download(ctx, ep.AudioURL)
	if err != nil {
		return nil, err
	}
	f.logger.Info("audio downloaded",
		zap.String("title", ep.Title),
		zap.Int("bytes", len(data)))
	return &Audio{Episode: *ep, Data: data, ContentType: contentType}, nil
}

// ResolveEpisode reads the audio location and title from an episode page
func (f *Fetcher) ResolveEpisode(ctx context.Context, pageURL string) (*Episode, error) {
	doc, err := f.document(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	audioURL, _ := doc.Find(`meta[property="og:audio"]`).First().Attr("content")
	title, _ := doc.Find(`meta[property="og:title"]`).First().Attr("content")
	if audioURL == "" {
		return nil, apperrors.Wrapf(ErrNoAudio, "%s", pageURL)
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	abs, err := resolveReference(pageURL, audioURL)
	if err != nil {
		return nil, err
	}
	return &Episode{
		PageURL:  pageURL,
		AudioURL: abs,
		Title:    strings.TrimSpace(title),
		Podcast:  strings.TrimSpace(doc.Find(".podcast-title").First().Text()),
	}, nil
}

// ResolvePodcast lists the episode pages of a xiaoyuzhou podcast, given its
// page URL or bare 24-hex-digit id
func (f *Fetcher) ResolvePodcast(ctx context.Context, input string) ([]string, error) {
	podcastURL, err := PodcastURL(input)
	if err != nil {
		return nil, err
	}

	doc, err := f.document(ctx, podcastURL)
	if err != nil {
		return nil, err
	}

	var dto model.PodcastDTO
	raw := doc.Find("#__NEXT_DATA__").Text()
	if raw == "" {
		return nil, apperrors.Newf("podcast page %s has no episode data", podcastURL)
	}
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode podcast data")
	}

	episodes := dto.Props.PageProps.Podcast.Episodes
	f.logger.Info("podcast resolved",
		zap.String("podcast", dto.Props.PageProps.Podcast.Title),
		zap.Int("episodes", len(episodes)))
	return lo.Map(episodes, func(e model.Episode, _ int) string { return EpisodeURL(e.Eid) }), nil
}

// PodcastURL accepts a podcast page URL or id
func PodcastURL(input string) (string, error) {
	if pidRegexp.MatchString(input) {
		return fmt.Sprintf("https://www.xiaoyuzhoufm.com/podcast/%s", input), nil
	}
	u, err := url.Parse(input)
	if err == nil && strings.HasSuffix(u.Host, "xiaoyuzhoufm.com") && strings.HasPrefix(u.Path, "/podcast/") {
		return u.String(), nil
	}
	return "", apperrors.InvalidFormat("podcast", "https://www.xiaoyuzhoufm.com/podcast/<pid> or a 24 digit pid")
}

// EpisodeURL builds a xiaoyuzhou episode page URL
func EpisodeURL(eid string) string {
	return fmt.Sprintf("https://www.xiaoyuzhoufm.com/episode/%s", eid)
}

// IsEpisodeURL reports whether s is a xiaoyuzhou episode page
func IsEpisodeURL(s string) bool {
	return episodeRegexp.MatchString(s)
}

func (f *Fetcher) document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to parse %s", pageURL)
	}
	return doc, nil
}

func (f *Fetcher) download(ctx context.Context, audioURL string) ([]byte, string, error) {
	resp, err := f.get(ctx, audioURL)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		return nil, "", apperrors.Newf("audio is %d bytes, limit is %d", resp.ContentLength, f.maxBytes)
	}

	body := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, "", apperrors.Wrapf(err, "failed to download %s", audioURL)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, "", apperrors.Newf("audio exceeds limit of %d bytes", f.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(contentType); err != nil || !strings.HasPrefix(mt, "audio/") && !strings.HasPrefix(mt, "video/") {
		contentType = files.ContentType(urlPath(audioURL))
	} else {
		contentType = mt
	}
	return data, contentType, nil
}

func (f *Fetcher) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(err, "GET %s", target)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, apperrors.Newf("GET %s: %s", target, resp.Status)
	}
	return resp, nil
}

func urlPath(s string) string {
	if u, err := url.Parse(s); err == nil {
		return u.Path
	}
	return s
}

func isAudioPath(p string) bool {
	return lo.Contains(files.AudioExtensions, strings.ToLower(path.Ext(p)))
}

func resolveReference(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", apperrors.InvalidFormat("og:audio", "a URL")
	}
	return b.ResolveReference(r).String(), nil
}
