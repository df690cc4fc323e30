package worktime

import (
	"net/url"
	"regexp"
	"strings"
)

// yunxiaoDomains are the task tracker hosts accepted by IsValidYunxiaoLink
var yunxiaoDomains = []string{
	"yunxiao.alibaba-inc.com",
	"yunxiao.aliyun.com",
	"devops.aliyun.com",
}

var (
	bracketedFragmentRe = regexp.MustCompile(`#\s*《(.+?)》`)
	fragmentRe          = regexp.MustCompile(`#\s*(.+)`)
	taskKeyRe           = regexp.MustCompile(`/task/([A-Z]+-\d+)`)
)

// ParseYunxiaoLink extracts a human readable title from a task tracker link. It tries, in order:
// a #《title》 fragment, any # fragment, a /task/KEY-123 path segment and finally the last path
// segment unless that is "task".
func ParseYunxiaoLink(link string) (string, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", false
	}

	if m := bracketedFragmentRe.FindStringSubmatch(link); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	if m := fragmentRe.FindStringSubmatch(link); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	if m := taskKeyRe.FindStringSubmatch(link); m != nil {
		return m[1], true
	}

	last := link[strings.LastIndex(link, "/")+1:]
	if last != "" && last != "task" {
		return last, true
	}

	return "", false
}

// IsValidYunxiaoLink reports whether link is an absolute URL on one of the tracker domains
func IsValidYunxiaoLink(link string) bool {
	link = strings.TrimSpace(link)
	if link == "" {
		return false
	}

	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	for _, domain := range yunxiaoDomains {
		if strings.Contains(host, domain) {
			return true
		}
	}
	return false
}
