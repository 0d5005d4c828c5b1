package models

import (
	"encoding/json"
	"sort"
	"strings"
)

type ProductImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID string `gorm:"index;type:varchar(64)" json:"product_id"`
	URL       string `gorm:"not null" json:"url"`
	Alt       string `json:"alt"`
	Position  int    `json:"position"`
}

// rawImage covers the object shapes seen in stored image payloads.
type rawImage struct {
	URL      string `json:"url"`
	ImageURL string `json:"image_url"`
	Src      string `json:"src"`
	Alt      string `json:"alt"`
	Position int    `json:"position"`
}

// NormalizeImages turns a stored image payload into the canonical image list.
// Accepted shapes: a single URL string, an array of URL strings, or an array of
// objects carrying url/image_url/src. Anything else yields an empty list.
func NormalizeImages(raw []byte) []ProductImage {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []ProductImage{}
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return imagesFromURLs(splitURLList(single))
	}

	var urls []string
	if err := json.Unmarshal(raw, &urls); err == nil {
		return imagesFromURLs(urls)
	}

	var objects []rawImage
	if err := json.Unmarshal(raw, &objects); err == nil {
		images := make([]ProductImage, 0, len(objects))
		for i, o := range objects {
			url := firstNonEmpty(o.URL, o.ImageURL, o.Src)
			if url == "" {
				continue
			}
			pos := o.Position
			if pos == 0 {
				pos = i
			}
			images = append(images, ProductImage{URL: url, Alt: o.Alt, Position: pos})
		}
		sort.SliceStable(images, func(i, j int) bool { return images[i].Position < images[j].Position })
		return images
	}

	return []ProductImage{}
}

// splitURLList handles the legacy comma separated form of a single string column.
func splitURLList(s string) []string {
	if !strings.Contains(s, ",") {
		return []string{s}
	}
	return strings.Split(s, ",")
}

func imagesFromURLs(urls []string) []ProductImage {
	images := make([]ProductImage, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		images = append(images, ProductImage{URL: u, Position: len(images)})
	}
	return images
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
