package models

import "mime"

// proofTypes - типы изображений, которые принимаются как чек, и их расширения.
// Форматы со скриптами (svg) не принимаются.
var proofTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ProofImageType нормализует Content-Type ("image/JPEG; q=1" -> "image/jpeg")
// и сообщает, допустим ли он для чека.
func ProofImageType(contentType string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	if _, ok := proofTypes[mediaType]; !ok {
		return "", false
	}
	return mediaType, true
}

// ProofExtension возвращает расширение для допустимого типа чека.
func ProofExtension(mediaType string) string {
	return proofTypes[mediaType]
}
