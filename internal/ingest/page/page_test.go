package page

import "testing"

func TestProcessingThenSucceeded(t *testing.T) {
	p := New()
	p.Processing("creditcard.csv", 1.5)

	st := p.Snapshot()
	if !st.Processing || !st.DescriptionHidden {
		t.Fatalf("expected processing state, got %+v", st)
	}
	if st.ProcessingText != "Processing creditcard.csv (1.50 MB)... Please wait." {
		t.Fatalf("unexpected processing text: %q", st.ProcessingText)
	}

	p.Succeeded("done", "<ul></ul>")
	st = p.Snapshot()
	if st.Processing {
		t.Fatal("expected indicator to stop")
	}
	if !st.DescriptionHidden {
		t.Fatal("expected description to stay hidden behind the overview")
	}
	if st.Message != "done" || st.MessageKind != MessageSuccess || st.OverviewHTML != "<ul></ul>" {
		t.Fatalf("unexpected success state: %+v", st)
	}
}

func TestFailedRevertsAndKeepsPreviousOverview(t *testing.T) {
	p := New()
	p.Succeeded("done", "<ul>old</ul>")

	p.Processing("bad.csv", 0)
	p.Failed("Error parsing CSV file: boom")

	st := p.Snapshot()
	if st.Processing || st.DescriptionHidden {
		t.Fatalf("expected pre-upload state, got %+v", st)
	}
	if st.Alert != "Error parsing CSV file: boom" || st.Alerts != 1 {
		t.Fatalf("unexpected alert: %q (%d)", st.Alert, st.Alerts)
	}
	if st.OverviewHTML != "<ul>old</ul>" {
		t.Fatalf("expected previous overview to stay, got %q", st.OverviewHTML)
	}
}

func TestFailedWithoutAlert(t *testing.T) {
	p := New()
	p.Processing("x.csv", 0)
	p.Failed("")

	st := p.Snapshot()
	if st.Alerts != 0 || st.Alert != "" {
		t.Fatalf("expected no alert, got %+v", st)
	}
	if st.Processing {
		t.Fatal("expected indicator to stop")
	}
}

func TestSidebar(t *testing.T) {
	p := New()

	p.ToggleSidebar()
	if !p.Snapshot().SidebarOpen {
		t.Fatal("expected sidebar open after toggle")
	}

	p.ClickOutside(true, false, 600)
	if !p.Snapshot().SidebarOpen {
		t.Fatal("click inside the sidebar must not close it")
	}
	p.ClickOutside(false, true, 600)
	if !p.Snapshot().SidebarOpen {
		t.Fatal("click on the toggle must not close it")
	}
	p.ClickOutside(false, false, 1200)
	if !p.Snapshot().SidebarOpen {
		t.Fatal("click outside on a wide viewport must not close it")
	}
	p.ClickOutside(false, false, 900)
	if p.Snapshot().SidebarOpen {
		t.Fatal("click outside on a narrow viewport must close it")
	}

	p.ToggleSidebar()
	p.Resize(899)
	if !p.Snapshot().SidebarOpen {
		t.Fatal("resize below the breakpoint must not close it")
	}
	p.Resize(900)
	if p.Snapshot().SidebarOpen {
		t.Fatal("resize to the breakpoint must close it")
	}
}
