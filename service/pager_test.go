package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/modidiviyansh/customer-call-tracker-sub000/models"
)

// fetchCall 记录一次FetchPage调用的参数
type fetchCall struct {
	keyword string
	page    int
	size    int
}

// fakeSource 可编程的分页数据源
type fakeSource struct {
	mu    sync.Mutex
	calls []fetchCall
	fn    func(keyword string, page, size int) ([]models.Customer, int64, error)
}

func (s *fakeSource) FetchPage(ctx context.Context, keyword string, page, size int) ([]models.Customer, int64, error) {
	s.mu.Lock()
	s.calls = append(s.calls, fetchCall{keyword: keyword, page: page, size: size})
	s.mu.Unlock()
	return s.fn(keyword, page, size)
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeSource) lastCall() fetchCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

// namedCustomers 生成指定数量的测试客户
func namedCustomers(prefix string, n int) []models.Customer {
	customers := make([]models.Customer, n)
	for i := range customers {
		customers[i] = models.Customer{
			Name:    fmt.Sprintf("%s-%d", prefix, i+1),
			Mobile1: "9876543210",
		}
	}
	return customers
}

// pagedSource 模拟共total条数据的分页数据源
func pagedSource(total int) *fakeSource {
	return &fakeSource{fn: func(keyword string, page, size int) ([]models.Customer, int64, error) {
		start := (page - 1) * size
		if start >= total {
			return []models.Customer{}, int64(total), nil
		}
		count := total - start
		if count > size {
			count = size
		}
		return namedCustomers("客户", count), int64(total), nil
	}}
}

func TestPagerRefresh(t *testing.T) {
	src := pagedSource(30)
	p := NewCustomerPager(src, nil, 10)

	p.Refresh(context.Background())

	snap := p.Snapshot()
	if snap.Page != 1 || snap.PageSize != 10 {
		t.Fatalf("期望第1页每页10条, 实际 page=%d size=%d", snap.Page, snap.PageSize)
	}
	if snap.TotalCount != 30 || snap.TotalPages != 3 {
		t.Fatalf("期望总数30共3页, 实际 total=%d pages=%d", snap.TotalCount, snap.TotalPages)
	}
	if len(snap.Items) != 10 {
		t.Fatalf("期望10条数据, 实际 %d", len(snap.Items))
	}
}

func TestPagerLastPagePartial(t *testing.T) {
	src := pagedSource(25)
	p := NewCustomerPager(src, nil, 10)

	p.Refresh(context.Background())
	p.GoToPage(context.Background(), 3)

	snap := p.Snapshot()
	if snap.Page != 3 {
		t.Fatalf("期望第3页, 实际 %d", snap.Page)
	}
	if len(snap.Items) != 5 {
		t.Fatalf("末页期望5条数据, 实际 %d", len(snap.Items))
	}
}

func TestPagerOutOfRangeIsNoop(t *testing.T) {
	src := pagedSource(30)
	p := NewCustomerPager(src, nil, 10)

	p.Refresh(context.Background())
	before := src.callCount()

	// 越界页码不发请求，状态不变
	p.GoToPage(context.Background(), 4)
	p.GoToPage(context.Background(), 0)
	p.GoToPage(context.Background(), -1)

	if src.callCount() != before {
		t.Fatalf("越界跳页不应发起查询, 调用数 %d -> %d", before, src.callCount())
	}
	if snap := p.Snapshot(); snap.Page != 1 {
		t.Fatalf("越界跳页后页码应保持1, 实际 %d", snap.Page)
	}
}

func TestPagerSetPageSizeResetsToFirstPage(t *testing.T) {
	src := pagedSource(100)
	p := NewCustomerPager(src, nil, 10)

	p.Refresh(context.Background())
	p.GoToPage(context.Background(), 5)

	p.SetPageSize(context.Background(), 25)

	snap := p.Snapshot()
	if snap.Page != 1 || snap.PageSize != 25 {
		t.Fatalf("改每页条数后应回到第1页, 实际 page=%d size=%d", snap.Page, snap.PageSize)
	}
	last := src.lastCall()
	if last.page != 1 || last.size != 25 {
		t.Fatalf("期望查询第1页25条, 实际 page=%d size=%d", last.page, last.size)
	}
}

func TestPagerSearchDebounce(t *testing.T) {
	src := pagedSource(30)
	p := NewCustomerPager(src, nil, 10)
	p.SetDebounce(20 * time.Millisecond)

	ctx := context.Background()
	// 连续输入只触发最后一次查询
	p.SetSearch(ctx, "a")
	p.SetSearch(ctx, "as")
	p.SetSearch(ctx, "ash")

	time.Sleep(100 * time.Millisecond)

	if n := src.callCount(); n != 1 {
		t.Fatalf("防抖窗口内连续输入期望1次查询, 实际 %d", n)
	}
	last := src.lastCall()
	if last.keyword != "ash" || last.page != 1 {
		t.Fatalf("期望以最终输入查询第1页, 实际 keyword=%q page=%d", last.keyword, last.page)
	}
	if got := p.AppliedSearch(); got != "ash" {
		t.Fatalf("期望生效搜索词 ash, 实际 %q", got)
	}
}

func TestPagerDiscardsStaleResponse(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	src := &fakeSource{fn: func(keyword string, page, size int) ([]models.Customer, int64, error) {
		if page == 1 {
			close(entered)
			<-release
			return namedCustomers("旧数据", 10), 100, nil
		}
		return namedCustomers("新数据", 10), 100, nil
	}}
	p := NewCustomerPager(src, nil, 10)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Refresh(context.Background())
	}()

	// 第一次查询挂起后发起第二次，第一次的响应应被丢弃
	<-entered
	p.GoToPage(context.Background(), 2)
	close(release)
	wg.Wait()

	snap := p.Snapshot()
	if snap.Page != 2 {
		t.Fatalf("期望保留最新查询的页码2, 实际 %d", snap.Page)
	}
	if len(snap.Items) == 0 || snap.Items[0].Name != "新数据-1" {
		t.Fatalf("过期响应不应覆盖最新数据, 实际首条 %+v", snap.Items)
	}
}

func TestPagerFallbackOnError(t *testing.T) {
	src := &fakeSource{fn: func(keyword string, page, size int) ([]models.Customer, int64, error) {
		return nil, 0, errors.New("connection refused")
	}}
	fallback := pagedSource(8)
	p := NewCustomerPager(src, fallback, 10)

	p.Refresh(context.Background())

	snap := p.Snapshot()
	if snap.Err != nil {
		t.Fatalf("降级成功后不应保留错误: %v", snap.Err)
	}
	if !snap.UsingFallback {
		t.Fatal("期望标记为本地降级数据")
	}
	if snap.TotalCount != 8 {
		t.Fatalf("期望降级数据总数8, 实际 %d", snap.TotalCount)
	}
}

func TestPagerErrorWithoutFallback(t *testing.T) {
	src := &fakeSource{fn: func(keyword string, page, size int) ([]models.Customer, int64, error) {
		return nil, 0, errors.New("service unavailable")
	}}
	p := NewCustomerPager(src, nil, 10)

	p.Refresh(context.Background())

	snap := p.Snapshot()
	if snap.Err == nil {
		t.Fatal("无降级数据时应保留错误")
	}
	if len(snap.Items) != 0 {
		t.Fatalf("失败后不应有数据, 实际 %d 条", len(snap.Items))
	}
}
