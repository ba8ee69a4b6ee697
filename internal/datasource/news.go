package datasource

import (
	"context"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/asharemcp/pkg/models"
)

// NewsFeed is one configured market news RSS feed.
type NewsFeed struct {
	Name string
	URL  string
}

// DefaultNewsFeeds lists the default Chinese financial news feeds.
var DefaultNewsFeeds = []NewsFeed{
	{Name: "东方财富", URL: "https://rss.eastmoney.com/rss_partener.xml"},
	{Name: "新浪财经", URL: "https://rss.sina.com.cn/roll/finance/hot_roll.xml"},
	{Name: "华尔街见闻", URL: "https://dedicated.wallstreetcn.com/rss.xml"},
}

// NewsSource fetches market headlines from RSS feeds. Feeds are queried
// per call; nothing is cached.
type NewsSource struct {
	feeds  []NewsFeed
	parser *gofeed.Parser
}

// NewNewsSource creates a news source. Passing no feeds selects
// DefaultNewsFeeds.
func NewNewsSource(feeds ...NewsFeed) *NewsSource {
	if len(feeds) == 0 {
		feeds = DefaultNewsFeeds
	}
	return &NewsSource{feeds: feeds, parser: gofeed.NewParser()}
}

type newsItem struct {
	published time.Time
	source    string
	title     string
	link      string
}

// GetMarketNews returns up to limit headlines across all feeds, newest
// first. Individual feed failures are tolerated; only a total failure
// surfaces as a SourceFailure, and zero items as NotFound.
func (n *NewsSource) GetMarketNews(ctx context.Context, limit int) (*models.Table, error) {
	if limit <= 0 {
		limit = 20
	}

	var items []newsItem
	var lastErr error
	for _, feed := range n.feeds {
		parsed, err := n.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			lastErr = err
			continue
		}
		for _, it := range parsed.Items {
			published := time.Time{}
			if it.PublishedParsed != nil {
				published = *it.PublishedParsed
			}
			items = append(items, newsItem{
				published: published,
				source:    feed.Name,
				title:     it.Title,
				link:      it.Link,
			})
		}
	}

	if len(items) == 0 {
		if lastErr != nil {
			return nil, WrapSource(lastErr, "all %d news feeds failed", len(n.feeds))
		}
		return nil, NotFound("no market news available")
	}

	sort.Slice(items, func(i, j int) bool { return items[i].published.After(items[j].published) })
	if len(items) > limit {
		items = items[:limit]
	}

	t := models.NewTable("时间", "来源", "标题", "链接")
	for _, it := range items {
		ts := ""
		if !it.published.IsZero() {
			ts = it.published.Format("2006-01-02 15:04")
		}
		t.AppendRow(ts, it.source, it.title, it.link)
	}
	return t, nil
}
