package abuild

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"shanhu.io/misc/errcode"
)

type download struct {
	name   string
	url    *url.URL
	rule   *Download
	sha256 string
}

func newDownload(r *Download) (*download, error) {
	const sha256Prefix = "sha256:"
	if !strings.HasPrefix(r.Checksum, sha256Prefix) {
		return nil, errcode.InvalidArgf("checksum is not sha256")
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, errcode.Annotate(err, "invalid url")
	}

	if r.Out == "" {
		return nil, errcode.InvalidArgf("output not specified")
	}

	return &download{
		name:   nameOr(r.Name, r.Out),
		url:    u,
		rule:   r,
		sha256: strings.TrimPrefix(r.Checksum, sha256Prefix),
	}, nil
}

func (d *download) meta() *buildRuleMeta {
	return &buildRuleMeta{name: d.name}
}

func readDownload(r io.Reader) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	h := sha256.New()
	mw := io.MultiWriter(h, buf)

	if _, err := io.Copy(mw, r); err != nil {
		return nil, "", errcode.Annotate(err, "download")
	}
	sum := h.Sum(nil)
	return buf.Bytes(), hex.EncodeToString(sum[:]), nil
}

func (d *download) fetch(Args) ([]byte, error) {
	req := &http.Request{
		Method: http.MethodGet,
		URL:    d.url,
	}
	client := new(http.Client)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download got %s", resp.Status)
	}

	bs, sum, err := readDownload(resp.Body)
	if err != nil {
		return nil, err
	}
	if sum != d.sha256 {
		return nil, errcode.Internalf(
			"incorrect sha256, want %s, got %s",
			d.sha256, sum,
		)
	}
	return bs, nil
}

func (d *download) build(env *env) ([]*builtOut, error) {
	target := env.target(d.rule.Out)
	out, err := env.sys.Build(target, d.fetch, &BuildOptions{
		Args: Args{d.url.String(), d.sha256},
		Bust: d.rule.Bust,
	})
	if err != nil {
		return nil, err
	}
	return []*builtOut{{target: target, out: out}}, nil
}
