package service

import (
	"context"
	"sync"
	"time"

	"github.com/modidiviyansh/customer-call-tracker-sub000/models"
	"github.com/modidiviyansh/customer-call-tracker-sub000/utils"
)

// DefaultSearchDebounce 搜索防抖时长
const DefaultSearchDebounce = 300 * time.Millisecond

// CustomerSource 客户分页数据源
type CustomerSource interface {
	FetchPage(ctx context.Context, keyword string, page, pageSize int) ([]models.Customer, int64, error)
}

// CustomerPager 客户列表分页器
// 持有当前页码、每页条数、总数和搜索词，每次状态变化发起一次查询。
// 每次查询带序号，过期响应直接丢弃，避免旧数据覆盖新状态。
type CustomerPager struct {
	source   CustomerSource
	fallback CustomerSource // 非nil时远端失败后降级到本地数据
	debounce time.Duration

	mu            sync.Mutex
	page          int
	pageSize      int
	totalCount    int64
	totalPages    int
	searchText    string // 原始输入
	appliedSearch string // 防抖后实际生效的搜索词
	items         []models.Customer
	lastErr       error
	usingFallback bool
	timer         *time.Timer
	seq           uint64
}

// NewCustomerPager 创建分页器，fallback传nil表示禁用本地降级
func NewCustomerPager(source CustomerSource, fallback CustomerSource, pageSize int) *CustomerPager {
	if pageSize < 1 {
		pageSize = 10
	}
	return &CustomerPager{
		source:   source,
		fallback: fallback,
		debounce: DefaultSearchDebounce,
		page:     1,
		pageSize: pageSize,
	}
}

// SetDebounce 调整防抖时长（测试用）
func (p *CustomerPager) SetDebounce(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.debounce = d
}

// Refresh 按当前状态重新拉取
func (p *CustomerPager) Refresh(ctx context.Context) {
	p.mu.Lock()
	page, size, keyword := p.page, p.pageSize, p.appliedSearch
	seq := p.nextSeqLocked()
	p.mu.Unlock()

	p.load(ctx, seq, page, size, keyword)
}

// GoToPage 跳转到指定页
// 页码越界（小于1或超过总页数）时不做任何事，状态保持不变
func (p *CustomerPager) GoToPage(ctx context.Context, page int) {
	p.mu.Lock()
	if page < 1 || (p.totalPages > 0 && page > p.totalPages) {
		p.mu.Unlock()
		return
	}
	size, keyword := p.pageSize, p.appliedSearch
	seq := p.nextSeqLocked()
	p.mu.Unlock()

	p.load(ctx, seq, page, size, keyword)
}

// NextPage 下一页
func (p *CustomerPager) NextPage(ctx context.Context) {
	p.mu.Lock()
	next := p.page + 1
	p.mu.Unlock()
	p.GoToPage(ctx, next)
}

// PrevPage 上一页
func (p *CustomerPager) PrevPage(ctx context.Context) {
	p.mu.Lock()
	prev := p.page - 1
	p.mu.Unlock()
	p.GoToPage(ctx, prev)
}

// SetPageSize 修改每页条数并回到第1页
func (p *CustomerPager) SetPageSize(ctx context.Context, size int) {
	if size < 1 {
		return
	}
	p.mu.Lock()
	p.pageSize = size
	seq := p.nextSeqLocked()
	keyword := p.appliedSearch
	p.mu.Unlock()

	p.load(ctx, seq, 1, size, keyword)
}

// SetSearch 更新搜索词
// 防抖窗口内的连续输入只触发最后一次查询；生效后回到第1页
func (p *CustomerPager) SetSearch(ctx context.Context, text string) {
	p.mu.Lock()
	p.searchText = text
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, func() {
		p.mu.Lock()
		keyword := p.searchText
		p.appliedSearch = keyword
		size := p.pageSize
		seq := p.nextSeqLocked()
		p.mu.Unlock()

		p.load(ctx, seq, 1, size, keyword)
	})
	p.mu.Unlock()
}

// SearchText 当前原始搜索输入
func (p *CustomerPager) SearchText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.searchText
}

// AppliedSearch 防抖后实际生效的搜索词
func (p *CustomerPager) AppliedSearch() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.appliedSearch
}

// Snapshot 分页器当前状态
type PagerSnapshot struct {
	Page          int
	PageSize      int
	TotalCount    int64
	TotalPages    int
	Items         []models.Customer
	Err           error
	UsingFallback bool
}

// Snapshot 读取当前状态
func (p *CustomerPager) Snapshot() PagerSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := make([]models.Customer, len(p.items))
	copy(items, p.items)
	return PagerSnapshot{
		Page:          p.page,
		PageSize:      p.pageSize,
		TotalCount:    p.totalCount,
		TotalPages:    p.totalPages,
		Items:         items,
		Err:           p.lastErr,
		UsingFallback: p.usingFallback,
	}
}

// nextSeqLocked 分配新的查询序号，调用方必须持有锁
func (p *CustomerPager) nextSeqLocked() uint64 {
	p.seq++
	return p.seq
}

// load 执行一次查询并在序号仍然最新时提交结果
func (p *CustomerPager) load(ctx context.Context, seq uint64, page, size int, keyword string) {
	items, total, err := p.source.FetchPage(ctx, keyword, page, size)
	usingFallback := false

	if err != nil && p.fallback != nil {
		// 本地降级：静默切换到内置数据，继续提供服务
		items, total, err = p.fallback.FetchPage(ctx, keyword, page, size)
		usingFallback = err == nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// 过期响应直接丢弃
	if seq != p.seq {
		return
	}

	if err != nil {
		utils.LogError(err, map[string]interface{}{
			"page":    page,
			"size":    size,
			"keyword": keyword,
		}, "拉取客户列表失败")
		p.lastErr = err
		p.items = nil
		p.totalCount = 0
		p.totalPages = 0
		p.page = page
		return
	}

	p.lastErr = nil
	p.usingFallback = usingFallback
	p.items = items
	p.totalCount = total
	p.totalPages = int((total + int64(size) - 1) / int64(size))
	p.page = page
}
