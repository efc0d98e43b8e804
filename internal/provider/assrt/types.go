package assrt

import (
	"strconv"

	"github.com/subseek/subseek/internal/models"
)

type statusCarrier interface {
	status() int
}

type envelope struct {
	Status int `json:"status"`
}

func (e *envelope) status() int {
	return e.Status
}

type searchResponse struct {
	envelope
	Sub struct {
		Subs []searchSub `json:"subs"`
	} `json:"sub"`
}

type searchSub struct {
	ID          int64    `json:"id"`
	NativeName  string   `json:"native_name"`
	VideoName   string   `json:"videoname"`
	ReleaseSite string   `json:"release_site"`
	UploadTime  string   `json:"upload_time"`
	SubType     string   `json:"subtype"`
	VoteScore   int      `json:"vote_score"`
	Lang        *subLang `json:"lang"`
}

type subLang struct {
	Desc     string          `json:"desc"`
	LangList map[string]bool `json:"langlist"`
}

func (s searchSub) toCandidate() models.SubtitleCandidate {
	candidate := models.SubtitleCandidate{
		ProviderID: ProviderID,
		RemoteID:   strconv.FormatInt(s.ID, 10),
		RecencyKey: s.UploadTime,
		FormatHint: s.SubType,
		Title:      s.NativeName,
		RawFields: map[string]string{
			"native_name":  s.NativeName,
			"videoname":    s.VideoName,
			"release_site": s.ReleaseSite,
			"vote_score":   strconv.Itoa(s.VoteScore),
		},
	}
	if candidate.Title == "" {
		candidate.Title = s.VideoName
	}

	if s.Lang != nil {
		candidate.LanguageLabel = s.Lang.Desc
		if len(s.Lang.LangList) > 0 {
			candidate.LanguageFlags = &models.LanguageFlags{
				Bilingual:   s.Lang.LangList["langdou"],
				Simplified:  s.Lang.LangList["langchs"],
				Traditional: s.Lang.LangList["langcht"],
				English:     s.Lang.LangList["langeng"],
			}
		}
	}
	return candidate
}

type detailResponse struct {
	envelope
	Sub struct {
		Subs []detailSub `json:"subs"`
	} `json:"sub"`
}

type detailSub struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	FileName string `json:"filename"`
	SubType  string `json:"subtype"`
	FileList []struct {
		URL  string `json:"url"`
		Name string `json:"f"`
		Size string `json:"s"`
	} `json:"filelist"`
}
