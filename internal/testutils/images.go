package testutils

// Minimal leading bytes that http.DetectContentType recognises. The rest of
// the payload is arbitrary.
const (
	PNGImage  = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"
	JPEGImage = "\xff\xd8\xff\xe0\x00\x10JFIF\x00"
	GIFImage  = "GIF89a\x01\x00\x01\x00"
	WebPImage = "RIFF\x24\x00\x00\x00WEBPVP8 "
	SVGImage  = `<svg xmlns="http://www.w3.org/2000/svg" onload="alert(document.cookie)"></svg>`
)
