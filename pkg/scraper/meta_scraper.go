package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

// ==================== SEO 元数据抓取 ====================

// 来源平台的 SEO 字段（标题/描述/结构化数据）不在 REST API 里，
// 只能从渲染后的页面 <head> 里抠出来。这里是 best-effort：
// 抓不到就算了，绝不影响同步主流程。

// PageMeta 从页面 head 提取的元数据
type PageMeta struct {
	Title           string
	MetaDescription string
	StructuredData  []string // JSON-LD 脚本原文
}

// MetaScraper 页面元数据抓取器
type MetaScraper struct {
	http *resty.Client
}

// NewMetaScraper 创建抓取器
func NewMetaScraper(timeout time.Duration) *MetaScraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MetaScraper{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", "Mozilla/5.0 (compatible; catalog-import)"),
	}
}

// Scrape 抓取页面并解析 head 元数据
func (s *MetaScraper) Scrape(ctx context.Context, pageURL string) (*PageMeta, error) {
	resp, err := s.http.R().SetContext(ctx).SetDoNotParseResponse(true).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("页面抓取失败 %s: %w", pageURL, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("页面抓取异常 %s [%d]", pageURL, resp.StatusCode())
	}
	return ParseHeadMeta(body)
}

// ParseHeadMeta 用流式 tokenizer 解析 head
// 只读到 </head> 为止，不解析整页
func ParseHeadMeta(r interface{ Read([]byte) (int, error) }) (*PageMeta, error) {
	meta := &PageMeta{}
	z := html.NewTokenizer(r)

	inTitle := false
	inJSONLD := false

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// EOF 或解析错误：把已经拿到的部分返回
			return meta, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "title":
				inTitle = tt == html.StartTagToken
			case "meta":
				var name, content string
				for _, a := range tok.Attr {
					switch a.Key {
					case "name", "property":
						name = strings.ToLower(a.Val)
					case "content":
						content = a.Val
					}
				}
				if (name == "description" || name == "og:description") && meta.MetaDescription == "" {
					meta.MetaDescription = strings.TrimSpace(content)
				}
			case "script":
				for _, a := range tok.Attr {
					if a.Key == "type" && strings.EqualFold(a.Val, "application/ld+json") {
						inJSONLD = true
					}
				}
			case "body":
				// head 已经结束
				return meta, nil
			}

		case html.EndTagToken:
			tok := z.Token()
			switch tok.Data {
			case "title":
				inTitle = false
			case "script":
				inJSONLD = false
			case "head":
				return meta, nil
			}

		case html.TextToken:
			text := string(z.Text())
			if inTitle && meta.Title == "" {
				meta.Title = strings.TrimSpace(text)
			}
			if inJSONLD {
				if t := strings.TrimSpace(text); t != "" {
					meta.StructuredData = append(meta.StructuredData, t)
				}
			}
		}
	}
}
