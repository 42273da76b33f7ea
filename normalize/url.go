package normalize

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Absolutize resolves ref against base. Refs that are already absolute
// pass through unchanged; an unparsable ref is returned as-is and will
// be dropped by validation.
func Absolutize(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if u.IsAbs() || base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}

// IsValidURL reports whether s is an absolute http or https URL with a host.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Domain returns the hostname of a URL, or "" when it has none.
func Domain(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// IsInternal reports whether target and base share a registrable domain,
// so sub.example.com and example.com count as the same site regardless of
// scheme. Hosts without a public suffix (IPs, localhost) compare by
// hostname equality.
func IsInternal(target, base string) bool {
	th := Domain(target)
	bh := Domain(base)
	if th == "" || bh == "" {
		return false
	}
	te, terr := publicsuffix.EffectiveTLDPlusOne(th)
	be, berr := publicsuffix.EffectiveTLDPlusOne(bh)
	if terr != nil || berr != nil {
		return strings.EqualFold(th, bh)
	}
	return strings.EqualFold(te, be)
}

// FileExtension returns the lowercased extension of the URL path without
// the dot, or "" when the path has no plausible extension.
func FileExtension(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	if ext == "" || len(ext) > 5 {
		return ""
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return strings.ToLower(ext)
}

var mediaExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}, "svg": {}, "ico": {}, "bmp": {},
	"mp4": {}, "webm": {}, "avi": {}, "mov": {}, "mkv": {},
	"mp3": {}, "wav": {}, "ogg": {}, "flac": {},
	"pdf": {}, "zip": {}, "tar": {}, "gz": {}, "rar": {},
}

// IsMediaURL reports whether the URL points at a media or binary file,
// judged by its path extension.
func IsMediaURL(s string) bool {
	_, ok := mediaExtensions[FileExtension(s)]
	return ok
}
