package utils

import "strings"

var extensionsByContentType = map[string]string{
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   "docx",
	"application/vnd.ms-excel":                                                  "xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "xlsx",
	"application/vnd.ms-powerpoint":                                             "ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
	"application/rtf":          "rtf",
	"application/zip":          "zip",
	"application/json":         "json",
	"application/xml":          "xml",
	"application/octet-stream": "bin",
	"text/plain":               "txt",
	"text/html":                "html",
	"text/csv":                 "csv",
	"text/calendar":            "ics",
	"text/vcard":               "vcf",
	"text/markdown":            "md",
	"image/jpeg":               "jpg",
	"image/jpg":                "jpg",
	"image/png":                "png",
	"image/gif":                "gif",
	"image/svg+xml":            "svg",
	"image/webp":               "webp",
	"image/tiff":               "tiff",
	"image/bmp":                "bmp",
	"image/heic":               "heic",
	"image/heif":               "heic",
	"message/rfc822":           "eml",
}

// GetFileExtensionFromContentType maps a MIME type to a file extension,
// ignoring parameters such as charset.
func GetFileExtensionFromContentType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	if ext, ok := extensionsByContentType[mediaType]; ok {
		return ext
	}

	coarse, sub, _ := strings.Cut(mediaType, "/")
	switch {
	case strings.Contains(sub, "zip") || strings.Contains(sub, "compressed"):
		return "zip"
	case strings.HasSuffix(sub, "+xml"):
		return "xml"
	case strings.HasSuffix(sub, "+json"):
		return "json"
	case coarse == "text":
		return "txt"
	case coarse == "audio" || coarse == "video":
		return coarse
	default:
		return "bin"
	}
}
